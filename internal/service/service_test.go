package service

import (
	"fmt"
	"testing"

	"woofpack/internal/database"
	"woofpack/internal/models"
	"woofpack/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one in-memory database shared by all goroutines
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Role:     "MEMBER",
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func newLedger(t *testing.T, db *gorm.DB) *LedgerService {
	t.Helper()
	return NewLedgerService(db, repository.NewLedgerRepository(db), repository.NewUserRepository(db))
}
