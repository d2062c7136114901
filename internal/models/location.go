package models

import (
	"time"

	"gorm.io/gorm"
)

// UserLocation stores last-known lat/lng per user. Separate columns rather
// than a spatial type for portability and Haversine queries.
type UserLocation struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Latitude      float64        `gorm:"type:decimal(10,8);not null;index:idx_location_lat_lng" json:"latitude"`
	Longitude     float64        `gorm:"type:decimal(11,8);not null;index:idx_location_lat_lng" json:"longitude"`
	IsWalking     bool           `gorm:"default:false;index" json:"is_walking"`
	LastUpdatedAt time.Time      `gorm:"not null;index" json:"last_updated_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserLocation) TableName() string {
	return "user_locations"
}
