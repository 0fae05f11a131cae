package model

import "time"

// Post belongs to exactly one author; author_id never changes after creation.
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_post_author;not null"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Body      string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index:idx_post_created"`
}

func (Post) TableName() string { return "posts" }
