package repository

import (
	"time"

	"woofpack/internal/models"
	"woofpack/pkg/geo"

	"gorm.io/gorm"
)

type CollectibleRepository struct {
	db *gorm.DB
}

func NewCollectibleRepository(db *gorm.DB) *CollectibleRepository {
	return &CollectibleRepository{db: db}
}

func (r *CollectibleRepository) CreateSpawn(s *models.CollectibleSpawn) error {
	return r.db.Create(s).Error
}

func (r *CollectibleRepository) GetSpawn(id uint) (*models.CollectibleSpawn, error) {
	var s models.CollectibleSpawn
	err := r.db.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CollectibleRepository) Deactivate(id uint) error {
	return r.db.Model(&models.CollectibleSpawn{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// DeactivateExpired flips the active flag on spawns whose expiry has passed.
// Hygiene only; Collect re-checks expiry at request time regardless.
func (r *CollectibleRepository) DeactivateExpired(now time.Time) (int64, error) {
	res := r.db.Model(&models.CollectibleSpawn{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// ListActiveInBox returns active, unexpired spawns inside a lat/lng bounding
// box. Exact radius filtering happens in the service with Haversine.
func (r *CollectibleRepository) ListActiveInBox(lat, lng, radiusMeters float64, typeFilter string, now time.Time) ([]models.CollectibleSpawn, error) {
	dLat, dLng := geo.BoundingDeltas(lat, radiusMeters)
	q := r.db.Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
			lat-dLat, lat+dLat, lng-dLng, lng+dLng)
	if typeFilter != "" {
		q = q.Where("type = ?", typeFilter)
	}
	var list []models.CollectibleSpawn
	err := q.Find(&list).Error
	return list, err
}

func (r *CollectibleRepository) CreateCollectionTx(tx *gorm.DB, c *models.Collection) error {
	return tx.Create(c).Error
}

func (r *CollectibleRepository) HasCollected(userID, spawnID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Collection{}).
		Where("user_id = ? AND spawn_id = ?", userID, spawnID).
		Count(&count).Error
	return count > 0, err
}

// CollectedSpawnIDs returns which of spawnIDs the user already collected.
func (r *CollectibleRepository) CollectedSpawnIDs(userID uint, spawnIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if len(spawnIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := r.db.Model(&models.Collection{}).
		Where("user_id = ? AND spawn_id IN ?", userID, spawnIDs).
		Pluck("spawn_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *CollectibleRepository) ListCollections(userID uint, limit, offset int) ([]models.Collection, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []models.Collection
	err := r.db.Preload("Spawn").
		Where("user_id = ?", userID).
		Order("collected_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
