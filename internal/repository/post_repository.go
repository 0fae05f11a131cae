package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/inklet/inklet/internal/model"
)

// FeedRow is a post joined with its author and reaction count, as the
// index and detail pages consume it.
type FeedRow struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
	ReactionCount int64     `json:"reaction_count"`
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	GetFeedRow(ctx context.Context, id string) (*FeedRow, error)
	ListFeed(ctx context.Context) ([]FeedRow, error)
	Update(ctx context.Context, id, title, body string) error
	DeleteWithReactions(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) GetFeedRow(ctx context.Context, id string) (*FeedRow, error) {
	var row FeedRow
	err := r.feedQuery(ctx).
		Where("posts.id = ?", id).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *postRepository) ListFeed(ctx context.Context) ([]FeedRow, error) {
	var rows []FeedRow
	err := r.feedQuery(ctx).
		Order("posts.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *postRepository) feedQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts").
		Select("posts.id, posts.author_id, users.username AS author_name, posts.title, posts.body, posts.created_at, COUNT(reactions.id) AS reaction_count").
		Joins("JOIN users ON users.id = posts.author_id").
		Joins("LEFT JOIN reactions ON reactions.post_id = posts.id").
		Group("posts.id, posts.author_id, users.username, posts.title, posts.body, posts.created_at")
}

// Update touches title and body only; id, author_id and created_at are fixed
// at creation.
func (r *postRepository) Update(ctx context.Context, id, title, body string) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "body": body}).Error
}

// DeleteWithReactions removes the post and its reaction rows in one
// transaction, so a half-applied delete can never be observed.
func (r *postRepository) DeleteWithReactions(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Reaction{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Post{}).Error
	})
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Count(&cnt).Error
	return cnt, err
}
