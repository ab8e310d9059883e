package service

import (
	"context"
	"strings"
	"sync"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)

	mu       sync.Mutex
	inflight map[commentKey]struct{}
}

// commentKey identifies one user's pending create on one post, for the
// double-submit guard.
type commentKey struct {
	userID uint
	postID uint
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		isAdmin:     isAdmin,
		inflight:    make(map[commentKey]struct{}),
	}
}

const maxCommentLen = 10000

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, err
	}

	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	key := commentKey{userID: in.UserID, postID: in.PostID}
	s.mu.Lock()
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return nil, models.NewConflictError("Comment already in progress")
	}
	s.inflight[key] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}()

	comment := &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// The persisted counter moves with the comments table, never ahead of it.
	if err := s.postRepo.IncrementCommentCount(ctx, in.PostID); err != nil {
		middleware.Logger.ErrorContext(ctx, "comment count increment failed",
			"post_id", in.PostID, "comment_id", comment.ID, "error", err.Error())
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, err
	}

	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Comment", in.CommentID)
		}
		return nil, err
	}

	if comment.UserID != in.UserID {
		allowed, err := s.canModerate(ctx, in.UserID, comment.PostID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, models.NewForbiddenError("You can only delete your own comments")
		}
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return nil, err
	}

	floored, err := s.postRepo.DecrementCommentCount(ctx, comment.PostID)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "comment count decrement failed",
			"post_id", comment.PostID, "comment_id", comment.ID, "error", err.Error())
	} else if floored {
		// The counter was already at zero with a comment still recorded:
		// drift that should never happen under the write path above.
		observability.CounterAnomalies.WithLabelValues("comment_count").Inc()
		middleware.Logger.WarnContext(ctx, "comment count floored at zero",
			"post_id", comment.PostID, "comment_id", comment.ID)
	}

	return comment, nil
}

// canModerate reports whether userID may remove someone else's comment:
// the parent post's author moderates their own thread, and admins moderate
// everything.
func (s *CommentService) canModerate(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err == nil && post.UserID == userID {
		return true, nil
	}
	if s.isAdmin == nil {
		return false, nil
	}
	return s.isAdmin(ctx, userID)
}
