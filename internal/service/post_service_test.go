package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostService_CreatePost_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{
			name:  "missing title",
			input: CreatePostInput{UserID: 1, Content: "body"},
		},
		{
			name:  "missing content",
			input: CreatePostInput{UserID: 1, Title: "hello"},
		},
		{
			name:  "title too long",
			input: CreatePostInput{UserID: 1, Title: string(make([]byte, maxTitleLen+1)), Content: "body"},
		},
		{
			name:  "bad cover url",
			input: CreatePostInput{UserID: 1, Title: "hello", Content: "body", CoverImageURL: "not a url"},
		},
		{
			name: "too many hashtags",
			input: CreatePostInput{UserID: 1, Title: "hello", Content: "body",
				Hashtags: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}},
		},
		{
			name: "hashtag with whitespace",
			input: CreatePostInput{UserID: 1, Title: "hello", Content: "body",
				Hashtags: []string{"two words"}},
		},
	}

	svc := NewPostService(noopPostRepo(), noopUserRepo(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(context.Background(), tt.input)
			assertValidationError(t, err)
		})
	}
}

func TestPostService_CreatePost_RequiresVerifiedEmail(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "newbie", EmailVerified: false}, nil
	}
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, _ *models.Post) error {
		t.Fatal("create should not be reached for unverified authors")
		return nil
	}

	svc := NewPostService(posts, users, nil)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  1,
		Title:   "My first post",
		Content: "hello world",
	})
	assertForbiddenError(t, err)
}

func TestPostService_CreatePost_NormalizesHashtags(t *testing.T) {
	var created *models.Post
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 42
		created = p
		return nil
	}
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id}, nil
	}

	svc := NewPostService(posts, noopUserRepo(), nil)
	result, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:   1,
		Title:    "Trail notes",
		Content:  "a long walk",
		Hashtags: []string{"#Hiking", "hiking", "  #Outdoors ", ""},
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, []string{"hiking", "outdoors"}, created.Hashtags)
	assert.Equal(t, uint(42), result.ID)
}

func TestPostService_CreatePost_RejectsDuplicateInFlight(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopUserRepo(), nil)
	svc.inflight[postKey{userID: 1, op: "create"}] = struct{}{}

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  1,
		Title:   "Double click",
		Content: "submitted twice",
	})
	assertAppErrorCode(t, err, "CONFLICT")
}

func TestPostService_DeletePost_RejectsDuplicateInFlight(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 1}, nil
	}
	svc := NewPostService(posts, noopUserRepo(), nil)
	svc.inflight[postKey{userID: 1, postID: 5, op: "delete"}] = struct{}{}

	err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 1, PostID: 5})
	assertAppErrorCode(t, err, "CONFLICT")
}

func TestPostService_GetPost_NotFound(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
		return nil, gorm.ErrRecordNotFound
	}

	svc := NewPostService(posts, noopUserRepo(), nil)
	_, err := svc.GetPost(context.Background(), 99, 0)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestPostService_SearchPosts_EmptyQuery(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopUserRepo(), nil)
	_, err := svc.SearchPosts(context.Background(), "", 20, 0, 0)
	assertValidationError(t, err)
}

func TestPostService_UpdatePost_OnlyOwner(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 7, Title: "theirs", Content: "body"}, nil
	}

	svc := NewPostService(posts, noopUserRepo(), nil)
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID: 2,
		PostID: 1,
		Title:  "mine now",
	})
	assertForbiddenError(t, err)
}

func TestPostService_UpdatePost_KeepsContentWhenOmitted(t *testing.T) {
	var updated *models.Post
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		if updated != nil {
			return updated, nil
		}
		return &models.Post{ID: id, UserID: 2, Title: "old title", Content: "original body"}, nil
	}
	posts.updateFn = func(_ context.Context, p *models.Post) error {
		updated = p
		return nil
	}

	svc := NewPostService(posts, noopUserRepo(), nil)
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID: 2,
		PostID: 1,
		Title:  "new title",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "original body", updated.Content)
}

func TestPostService_DeletePost_Permissions(t *testing.T) {
	newPosts := func(deleted *bool) *postRepoStub {
		posts := noopPostRepo()
		posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 7}, nil
		}
		posts.deleteFn = func(_ context.Context, _ uint) error {
			*deleted = true
			return nil
		}
		return posts
	}

	t.Run("owner can delete", func(t *testing.T) {
		var deleted bool
		svc := NewPostService(newPosts(&deleted), noopUserRepo(), nil)
		err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 7, PostID: 1})
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		var deleted bool
		svc := NewPostService(newPosts(&deleted), noopUserRepo(), nil)
		err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 2, PostID: 1})
		assertForbiddenError(t, err)
		assert.False(t, deleted)
	})

	t.Run("admin can delete", func(t *testing.T) {
		var deleted bool
		isAdmin := func(_ context.Context, _ uint) (bool, error) { return true, nil }
		svc := NewPostService(newPosts(&deleted), noopUserRepo(), isAdmin)
		err := svc.DeletePost(context.Background(), DeletePostInput{UserID: 2, PostID: 1})
		require.NoError(t, err)
		assert.True(t, deleted)
	})
}
