package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inklet/inklet/internal/model"
)

type ReactionRepository interface {
	Create(ctx context.Context, authorID, postID string) error
	Delete(ctx context.Context, authorID, postID string) error
	Exists(ctx context.Context, authorID, postID string) (bool, error)
	CountForPost(ctx context.Context, postID string) (int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository { return &reactionRepository{db: db} }

func (r *reactionRepository) Create(ctx context.Context, authorID, postID string) error {
	rx := &model.Reaction{ID: uuid.New().String(), AuthorID: authorID, PostID: postID}
	// Upsert against idx_reaction_pair: reacting twice leaves one row.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rx).Error
}

func (r *reactionRepository) Delete(ctx context.Context, authorID, postID string) error {
	return r.db.WithContext(ctx).
		Where("author_id = ? AND post_id = ?", authorID, postID).
		Delete(&model.Reaction{}).Error
}

func (r *reactionRepository) Exists(ctx context.Context, authorID, postID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Where("author_id = ? AND post_id = ?", authorID, postID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *reactionRepository) CountForPost(ctx context.Context, postID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Where("post_id = ?", postID).
		Count(&cnt).Error
	return cnt, err
}
