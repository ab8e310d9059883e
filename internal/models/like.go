package models

import "time"

// Like is a membership row in the user/post like set. The composite primary
// key makes duplicate inserts a no-op at the database level.
type Like struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	PostID    uint      `json:"post_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
}

// Save marks a post bookmarked by a user. Same shape and semantics as Like,
// tracked in its own table so the two sets toggle independently.
type Save struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	PostID    uint      `json:"post_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
}
