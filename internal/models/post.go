package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a published entry. CommentCount is a persisted counter kept in
// lockstep with the comments table; LikesCount, SavesCount, Liked, and Saved
// are computed per query and never written back.
type Post struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	Title         string         `json:"title" gorm:"not null"`
	Content       string         `json:"content" gorm:"type:text;not null"`
	CoverImageURL string         `json:"cover_image_url"`
	Hashtags      []string       `json:"hashtags" gorm:"serializer:json"`
	UserID        uint           `json:"user_id" gorm:"not null;index"`
	User          User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CommentCount  int            `json:"comment_count" gorm:"not null;default:0"`
	LikesCount    int            `json:"likes_count" gorm:"->"`
	SavesCount    int            `json:"saves_count" gorm:"->"`
	Liked         bool           `json:"liked" gorm:"->"`
	Saved         bool           `json:"saved" gorm:"->"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID"`
}

// AfterFind normalizes rows written before hashtags existed and clamps
// counters that drifted negative in older schema revisions.
func (p *Post) AfterFind(_ *gorm.DB) error {
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
	if p.CommentCount < 0 {
		p.CommentCount = 0
	}
	return nil
}
