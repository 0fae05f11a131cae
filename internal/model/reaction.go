package model

import "time"

// Reaction is a thumbs-up marker a user toggles on a post.
// idx_reaction_pair = (author_id, post_id) keeps at most one row per pair.
type Reaction struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_reaction_author;index:idx_reaction_pair,unique;not null"`
	PostID    string    `gorm:"type:varchar(36);not null;index:idx_reaction_post;index:idx_reaction_pair,unique"`
	CreatedAt time.Time
}

func (Reaction) TableName() string { return "reactions" }
