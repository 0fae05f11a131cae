package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/inklet/inklet/internal/cache"
	"github.com/inklet/inklet/internal/repository"
)

type ReactionService interface {
	React(ctx context.Context, postID, userID string) error
	Unreact(ctx context.Context, postID, userID string) error
	HasReacted(ctx context.Context, postID, userID string) (bool, error)
	Count(ctx context.Context, postID string) (int64, error)
}

type reactionService struct {
	reactions repository.ReactionRepository
	posts     repository.PostRepository
	counts    *cache.ReactionCounts
	refresher *cache.CountRefresher
}

// NewReactionService builds the reaction toggle. counts and refresher may be
// nil when Redis is not configured; every path works without them.
func NewReactionService(
	reactions repository.ReactionRepository,
	posts repository.PostRepository,
	counts *cache.ReactionCounts,
	refresher *cache.CountRefresher,
) ReactionService {
	return &reactionService{reactions: reactions, posts: posts, counts: counts, refresher: refresher}
}

// React moves the (user, post) pair to the reacted state. The insert is an
// upsert on the composite unique key, so concurrent or repeated calls
// converge on exactly one row.
func (s *reactionService) React(ctx context.Context, postID, userID string) error {
	if err := s.requirePost(ctx, postID); err != nil {
		return err
	}
	if err := s.reactions.Create(ctx, userID, postID); err != nil {
		return err
	}
	s.invalidate(ctx, postID)
	return nil
}

// Unreact is a delete-if-exists; unreacting twice is a no-op.
func (s *reactionService) Unreact(ctx context.Context, postID, userID string) error {
	if err := s.requirePost(ctx, postID); err != nil {
		return err
	}
	if err := s.reactions.Delete(ctx, userID, postID); err != nil {
		return err
	}
	s.invalidate(ctx, postID)
	return nil
}

func (s *reactionService) HasReacted(ctx context.Context, postID, userID string) (bool, error) {
	return s.reactions.Exists(ctx, userID, postID)
}

// Count reads through the cache when one is configured.
func (s *reactionService) Count(ctx context.Context, postID string) (int64, error) {
	if s.counts != nil {
		if n, ok := s.counts.Get(ctx, postID); ok {
			return n, nil
		}
	}
	n, err := s.reactions.CountForPost(ctx, postID)
	if err != nil {
		return 0, err
	}
	if s.counts != nil {
		s.counts.Set(ctx, postID, n)
	}
	return n, nil
}

func (s *reactionService) requirePost(ctx context.Context, postID string) error {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

func (s *reactionService) invalidate(ctx context.Context, postID string) {
	if s.counts != nil {
		s.counts.Invalidate(ctx, postID)
	}
	if s.refresher != nil {
		s.refresher.Enqueue(postID)
	}
}
