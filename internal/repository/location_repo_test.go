package repository

import (
	"fmt"
	"testing"

	"woofpack/internal/database"
	"woofpack/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
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
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func placeUser(t *testing.T, db *gorm.DB, repo *LocationRepository, username string, lat, lng float64) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Role:     "MEMBER",
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, repo.Upsert(u.ID, lat, lng, false))
	return u
}

func TestListNearbyUsers(t *testing.T) {
	db := newTestDB(t)
	repo := NewLocationRepository(db)

	me := placeUser(t, db, repo, "rex", 47.6062, -122.3321)
	beside := placeUser(t, db, repo, "luna", 47.6072, -122.3311)
	// ~800 m due east; the prefilter box must widen with latitude to keep it
	east := placeUser(t, db, repo, "milo", 47.6062, -122.321443)
	placeUser(t, db, repo, "far", 48.6062, -122.3321)
	inactive := placeUser(t, db, repo, "ghost", 47.6063, -122.3322)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	nearby, err := repo.ListNearby(47.6062, -122.3321, 1000, me.ID, 50)
	require.NoError(t, err)
	require.Len(t, nearby, 2)
	byID := map[uint]NearbyUser{}
	for _, n := range nearby {
		byID[n.User.ID] = n
	}
	assert.InDelta(t, 135, byID[beside.ID].DistanceMeters, 30)
	assert.InDelta(t, 800, byID[east.ID].DistanceMeters, 20)
}
