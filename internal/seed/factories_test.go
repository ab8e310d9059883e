package seed

import (
	"testing"
	"time"

	"inkwell/internal/models"
)

func TestBuildPost_TimestampsAndHashtags(t *testing.T) {
	opts := SeedOptions{DryRun: true, MaxDays: 30}
	f := NewFactory(nil, opts)
	user := &models.User{ID: 1}

	p := f.BuildPost(user)
	if p.Title == "" || p.Content == "" {
		t.Fatalf("expected generated title and content, got %q / %q", p.Title, p.Content)
	}
	if len(p.Hashtags) > 4 {
		t.Fatalf("too many hashtags: %v", p.Hashtags)
	}
	if p.UserID != user.ID {
		t.Fatalf("post not attributed to user: %d", p.UserID)
	}

	// timestamp should be within MaxDays
	if time.Since(p.CreatedAt) > (time.Duration(opts.MaxDays)+1)*24*time.Hour {
		t.Fatalf("created_at too old: %v", p.CreatedAt)
	}
}

func TestCreateUser_DryRunAssignsSyntheticID(t *testing.T) {
	f := NewFactory(nil, SeedOptions{DryRun: true, SkipBcrypt: true})

	u1, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	u2, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if u1.ID == 0 || u2.ID == 0 {
		t.Fatal("expected synthetic IDs in dry-run mode")
	}
	if u1.ID == u2.ID {
		t.Fatalf("synthetic IDs collide: %d", u1.ID)
	}
	if !u1.EmailVerified {
		t.Fatal("seeded users default to verified")
	}
	if u1.Password != "password123" {
		t.Fatalf("SkipBcrypt should store the plaintext password, got %q", u1.Password)
	}
}
