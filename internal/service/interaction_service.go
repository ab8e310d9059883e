package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// ToggleTimeout bounds each like/save store round-trip.
const ToggleTimeout = 10 * time.Second

type interactionKind string

const (
	kindLike interactionKind = "like"
	kindSave interactionKind = "save"
)

type interactionKey struct {
	userID uint
	postID uint
	kind   interactionKind
}

// InteractionService toggles like/save membership with optimistic counter
// mirroring. Each toggle applies a provisional delta, writes through to the
// store, and resolves the mirror with the authoritative count on success or
// rolls the delta back on failure. A second toggle for the same user, post,
// and kind while one is in flight is rejected instead of double-applied.
type InteractionService struct {
	postRepo repository.PostRepository
	timeout  time.Duration

	mu       sync.Mutex
	inflight map[interactionKey]*counterMirror
}

func NewInteractionService(postRepo repository.PostRepository) *InteractionService {
	return &InteractionService{
		postRepo: postRepo,
		timeout:  ToggleTimeout,
		inflight: make(map[interactionKey]*counterMirror),
	}
}

// ToggleLike flips the user's like on the post and returns the post with
// authoritative counts.
func (s *InteractionService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.toggle(ctx, userID, postID, kindLike)
}

// ToggleSave flips the user's save on the post and returns the post with
// authoritative counts.
func (s *InteractionService) ToggleSave(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.toggle(ctx, userID, postID, kindSave)
}

func (s *InteractionService) toggle(ctx context.Context, userID, postID uint, kind interactionKind) (*models.Post, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, s.mapStoreError(err, postID)
	}

	key := interactionKey{userID: userID, postID: postID, kind: kind}
	mirror, err := s.begin(key, post, kind)
	if err != nil {
		return nil, err
	}
	defer s.finish(key)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	direction, err := s.flip(ctx, userID, postID, kind)
	if err != nil {
		mirror.Revert()
		observability.InteractionRollbacks.WithLabelValues(string(kind)).Inc()
		middleware.Logger.WarnContext(ctx, "interaction toggle rolled back",
			"kind", string(kind), "post_id", postID, "user_id", userID, "error", err.Error())
		return nil, s.mapStoreError(err, postID)
	}

	observability.InteractionToggles.WithLabelValues(string(kind), direction).Inc()

	// Refetch as the authoritative resync; the mirror's provisional delta
	// is replaced by whatever the store now reports. The write has already
	// landed, so a failed refetch degrades to the provisional view rather
	// than an error, and the next full read resynchronizes.
	updated, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "interaction refetch failed, serving provisional state",
			"kind", string(kind), "post_id", postID, "user_id", userID, "error", err.Error())
		return s.provisionalPost(post, mirror, kind, direction), nil
	}
	if kind == kindLike {
		mirror.Commit(updated.LikesCount)
	} else {
		mirror.Commit(updated.SavesCount)
	}

	return updated, nil
}

// provisionalPost projects the toggle onto the pre-toggle snapshot when the
// authoritative refetch is unavailable.
func (s *InteractionService) provisionalPost(post *models.Post, mirror *counterMirror, kind interactionKind, direction string) *models.Post {
	projected := *post
	member := direction == "add"
	if kind == kindLike {
		projected.Liked = member
		projected.LikesCount = mirror.Provisional()
	} else {
		projected.Saved = member
		projected.SavesCount = mirror.Provisional()
	}
	return &projected
}

// begin installs the in-flight guard and the provisional mirror.
func (s *InteractionService) begin(key interactionKey, post *models.Post, kind interactionKind) (*counterMirror, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[key]; busy {
		return nil, models.NewConflictError("Interaction already in progress")
	}

	var base int
	var member bool
	if kind == kindLike {
		base, member = post.LikesCount, post.Liked
	} else {
		base, member = post.SavesCount, post.Saved
	}
	delta := 1
	if member {
		delta = -1
	}

	mirror := newCounterMirror(base, delta)
	s.inflight[key] = mirror
	return mirror, nil
}

func (s *InteractionService) finish(key interactionKey) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

// flip performs the membership check and the opposite write.
func (s *InteractionService) flip(ctx context.Context, userID, postID uint, kind interactionKind) (direction string, err error) {
	var member bool
	switch kind {
	case kindLike:
		member, err = s.postRepo.IsLiked(ctx, userID, postID)
		if err != nil {
			return "", err
		}
		if member {
			return "remove", s.postRepo.Unlike(ctx, userID, postID)
		}
		return "add", s.postRepo.Like(ctx, userID, postID)
	default:
		member, err = s.postRepo.IsSaved(ctx, userID, postID)
		if err != nil {
			return "", err
		}
		if member {
			return "remove", s.postRepo.Unsave(ctx, userID, postID)
		}
		return "add", s.postRepo.Save(ctx, userID, postID)
	}
}

// PendingCount reports the provisional count for an in-flight toggle, and
// whether one exists. Used to answer reads that race a toggle.
func (s *InteractionService) PendingCount(userID, postID uint, kind string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mirror, ok := s.inflight[interactionKey{userID: userID, postID: postID, kind: interactionKind(kind)}]
	if !ok {
		return 0, false
	}
	return mirror.Provisional(), true
}

func (s *InteractionService) mapStoreError(err error, postID uint) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewTimeoutError("Interaction timed out")
	case errors.Is(err, context.Canceled):
		return models.NewNetworkError("Interaction was interrupted", err)
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isNotFound(err) {
		return models.NewNotFoundError("Post", postID)
	}
	return models.NewInternalError(err)
}
