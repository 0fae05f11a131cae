package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inklet/inklet/internal/model"
	"github.com/inklet/inklet/internal/repository"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared-cache memory DB keeps the pool's connections on the
	// same database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Post{}, &model.Reaction{}))
	return db
}

func newAuth(db *gorm.DB) AuthService {
	return NewAuthService(repository.NewUserRepository(db), bcrypt.MinCost)
}

func registerUser(t *testing.T, auth AuthService, username string) *model.User {
	t.Helper()
	u, err := auth.Register(context.Background(), username, "secret")
	require.NoError(t, err)
	return u
}
