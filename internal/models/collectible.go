package models

import (
	"time"

	"gorm.io/gorm"
)

// CollectibleSpawn is a geolocated world object. The reward currency is
// snapshotted at creation so a later change to the type mapping cannot
// change what an existing spawn pays out.
type CollectibleSpawn struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Type      string         `gorm:"size:20;not null;index" json:"type"`
	Latitude  float64        `gorm:"type:decimal(10,8);not null;index:idx_spawn_lat_lng" json:"latitude"`
	Longitude float64        `gorm:"type:decimal(11,8);not null;index:idx_spawn_lat_lng" json:"longitude"`
	Value     int64          `gorm:"not null" json:"value"`
	Currency  string         `gorm:"size:8;not null" json:"currency"`
	ExpiresAt *time.Time     `gorm:"index" json:"expires_at,omitempty"` // nil = until deactivated
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CollectibleSpawn) TableName() string {
	return "collectible_spawns"
}

// Collectable reports whether the spawn can still be collected at now.
func (s *CollectibleSpawn) Collectable(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return false
	}
	return true
}

// Collection is the join record that a user claimed a spawn. The unique
// index on (user_id, spawn_id) backs the at-most-once collection guarantee.
type Collection struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex:idx_collection_user_spawn,priority:1;not null" json:"user_id"`
	SpawnID     uint      `gorm:"uniqueIndex:idx_collection_user_spawn,priority:2;not null" json:"spawn_id"`
	CollectedAt time.Time `gorm:"not null" json:"collected_at"`

	User  User             `gorm:"foreignKey:UserID" json:"-"`
	Spawn CollectibleSpawn `gorm:"foreignKey:SpawnID" json:"spawn,omitempty"`
}

func (Collection) TableName() string {
	return "collections"
}
