package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inklet/inklet/internal/model"
	"github.com/inklet/inklet/internal/repository"
)

type PostService interface {
	Feed(ctx context.Context) ([]repository.FeedRow, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	GetDetail(ctx context.Context, id string) (*repository.FeedRow, error)
	Create(ctx context.Context, authorID, title, body string) (*model.Post, error)
	Update(ctx context.Context, id, userID, title, body string) error
	Delete(ctx context.Context, id, userID string) error
}

type postService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) PostService {
	return &postService{posts: posts}
}

func (s *postService) Feed(ctx context.Context) ([]repository.FeedRow, error) {
	return s.posts.ListFeed(ctx)
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *postService) GetDetail(ctx context.Context, id string) (*repository.FeedRow, error) {
	row, err := s.posts.GetFeedRow(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return row, nil
}

func (s *postService) Create(ctx context.Context, authorID, title, body string) (*model.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	p := &model.Post{ID: uuid.New().String(), AuthorID: authorID, Title: title, Body: body}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) Update(ctx context.Context, id, userID, title, body string) error {
	if _, err := s.requireAuthor(ctx, id, userID); err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	return s.posts.Update(ctx, id, title, body)
}

func (s *postService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.requireAuthor(ctx, id, userID); err != nil {
		return err
	}
	return s.posts.DeleteWithReactions(ctx, id)
}

// requireAuthor resolves the existence check before the ownership check, so
// a missing post is always a 404 and never leaks as a 403.
func (s *postService) requireAuthor(ctx context.Context, id, userID string) (*model.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != userID {
		return nil, ErrNotPostAuthor
	}
	return p, nil
}
