package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)

	mu       sync.Mutex
	inflight map[postKey]struct{}
}

// postKey identifies one user's pending create or delete, for the
// double-submit guard. Creates use a zero postID.
type postKey struct {
	userID uint
	postID uint
	op     string
}

type CreatePostInput struct {
	UserID        uint
	Title         string
	Content       string
	CoverImageURL string
	Hashtags      []string
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
}

type UpdatePostInput struct {
	UserID        uint
	PostID        uint
	Title         string
	Content       string
	CoverImageURL string
	Hashtags      []string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		isAdmin:  isAdmin,
		inflight: make(map[postKey]struct{}),
	}
}

// acquire installs the in-flight guard for key, or reports a conflict when
// the same submission is already pending.
func (s *PostService) acquire(key postKey) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return nil, models.NewConflictError("Post " + key.op + " already in progress")
	}
	s.inflight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}, nil
}

const (
	maxTitleLen   = 300
	maxContentLen = 50000
	maxHashtags   = 10
	maxHashtagLen = 50
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// normalizeHashtags trims, strips a leading '#', lowercases, and dedupes.
func normalizeHashtags(tags []string) ([]string, error) {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		if len(tag) > maxHashtagLen {
			return nil, models.NewValidationError("Hashtag too long (max 50 characters)")
		}
		if strings.ContainsAny(tag, " \t\n") {
			return nil, models.NewValidationError("Hashtags cannot contain whitespace")
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > maxHashtags {
		return nil, models.NewValidationError("Too many hashtags (max 10)")
	}
	return out, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if in.CoverImageURL != "" {
		if _, err := url.ParseRequestURI(in.CoverImageURL); err != nil {
			return nil, models.NewValidationError("cover_image_url must be a valid URL")
		}
	}

	hashtags, err := normalizeHashtags(in.Hashtags)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !author.EmailVerified {
		return nil, models.NewForbiddenError("Verify your email before publishing")
	}

	release, err := s.acquire(postKey{userID: in.UserID, op: "create"})
	if err != nil {
		return nil, err
	}
	defer release()

	post := &models.Post{
		Title:         in.Title,
		Content:       in.Content,
		CoverImageURL: in.CoverImageURL,
		Hashtags:      hashtags,
		UserID:        in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	// Anonymous first pages share a cache entry; personalized reads go to
	// the store so liked/saved flags are fresh.
	if in.CurrentUserID == 0 && in.Offset == 0 && in.Limit <= 20 {
		var posts []*models.Post
		key := cache.FeedKey(0, in.Limit)
		err := cache.Aside(ctx, key, &posts, cache.FeedTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.List(ctx, in.Limit, in.Offset, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		return posts, nil
	}

	return s.postRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

func (s *PostService) SearchPosts(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.postRepo.Search(ctx, query, limit, offset, currentUserID)
}

// GetSavedPosts lists the posts the user has bookmarked, newest save first.
func (s *PostService) GetSavedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.GetSavedByUser(ctx, userID, limit, offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	hashtags, err := normalizeHashtags(in.Hashtags)
	if err != nil {
		return nil, err
	}

	post.Title = in.Title
	if in.Content != "" {
		post.Content = in.Content
	}
	post.CoverImageURL = in.CoverImageURL
	post.Hashtags = hashtags

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		if isNotFound(err) {
			return models.NewNotFoundError("Post", in.PostID)
		}
		return err
	}

	if post.UserID != in.UserID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own posts")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own posts")
		}
	}

	release, err := s.acquire(postKey{userID: in.UserID, postID: in.PostID, op: "delete"})
	if err != nil {
		return err
	}
	defer release()

	return s.postRepo.Delete(ctx, in.PostID)
}
