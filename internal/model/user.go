package model

import "time"

// User is created at registration and immutable afterwards.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex:idx_user_username;not null"`
	PasswordHash string    `gorm:"type:varchar(128);not null"`
	CreatedAt    time.Time
}

func (User) TableName() string { return "users" }
