package repository

import (
	"time"

	"woofpack/internal/models"
	"woofpack/pkg/geo"

	"gorm.io/gorm"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Upsert(userID uint, lat, lng float64, isWalking bool) error {
	var loc models.UserLocation
	err := r.db.Where("user_id = ?", userID).First(&loc).Error
	if err != nil {
		loc = models.UserLocation{UserID: userID}
	}
	loc.Latitude = lat
	loc.Longitude = lng
	loc.IsWalking = isWalking
	loc.LastUpdatedAt = time.Now()
	return r.db.Save(&loc).Error
}

func (r *LocationRepository) GetByUserID(userID uint) (*models.UserLocation, error) {
	var loc models.UserLocation
	err := r.db.Where("user_id = ?", userID).First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// NearbyUser is a user within a radius of a query point.
type NearbyUser struct {
	User           models.User
	Location       models.UserLocation
	DistanceMeters float64
}

// ListNearby returns active users within radiusMeters of (lat, lng),
// bounding-box prefiltered in SQL and exact-filtered with Haversine.
func (r *LocationRepository) ListNearby(lat, lng, radiusMeters float64, excludeUserID uint, limit int) ([]NearbyUser, error) {
	if limit <= 0 {
		limit = 50
	}
	dLat, dLng := geo.BoundingDeltas(lat, radiusMeters)
	var locs []models.UserLocation
	err := r.db.Preload("User").
		Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
			lat-dLat, lat+dLat, lng-dLng, lng+dLng).
		Where("user_id <> ?", excludeUserID).
		Limit(limit * 2).
		Find(&locs).Error
	if err != nil {
		return nil, err
	}
	out := make([]NearbyUser, 0, len(locs))
	for _, l := range locs {
		if !l.User.IsActive {
			continue
		}
		d := geo.HaversineMeters(lat, lng, l.Latitude, l.Longitude)
		if d > radiusMeters {
			continue
		}
		out = append(out, NearbyUser{User: l.User, Location: l, DistanceMeters: d})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
