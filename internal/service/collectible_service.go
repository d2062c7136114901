package service

import (
	"errors"
	"fmt"
	"time"

	"woofpack/internal/domain"
	"woofpack/internal/models"
	"woofpack/internal/repository"
	"woofpack/pkg/geo"

	"gorm.io/gorm"
)

// CollectibleService owns spawns and collections. A successful collect
// inserts the Collection row and appends the reward credit in one database
// transaction; the (user, spawn) unique index makes the insert the atomic
// at-most-once step.
type CollectibleService struct {
	db     *gorm.DB
	repo   *repository.CollectibleRepository
	ledger *LedgerService
	now    func() time.Time
}

func NewCollectibleService(db *gorm.DB, repo *repository.CollectibleRepository, ledger *LedgerService) *CollectibleService {
	return &CollectibleService{db: db, repo: repo, ledger: ledger, now: time.Now}
}

// SpawnCollectible creates an active spawn. ttl == 0 means it persists until
// explicitly deactivated. The reward currency is snapshotted from the type
// at creation time.
func (s *CollectibleService) SpawnCollectible(spawnType string, lat, lng float64, value int64, ttl time.Duration) (*models.CollectibleSpawn, error) {
	if !domain.ValidSpawnType(spawnType) || !geo.ValidCoords(lat, lng) {
		return nil, domain.ErrInvalidInput
	}
	if value <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	spawn := &models.CollectibleSpawn{
		Type:      spawnType,
		Latitude:  lat,
		Longitude: lng,
		Value:     value,
		Currency:  domain.CurrencyForSpawnType(spawnType),
		IsActive:  true,
	}
	if ttl > 0 {
		exp := s.now().Add(ttl)
		spawn.ExpiresAt = &exp
	}
	if err := s.repo.CreateSpawn(spawn); err != nil {
		return nil, err
	}
	return spawn, nil
}

func (s *CollectibleService) Deactivate(spawnID uint) error {
	if _, err := s.getSpawn(spawnID); err != nil {
		return err
	}
	return s.repo.Deactivate(spawnID)
}

func (s *CollectibleService) getSpawn(spawnID uint) (*models.CollectibleSpawn, error) {
	spawn, err := s.repo.GetSpawn(spawnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSpawnNotFound
		}
		return nil, err
	}
	return spawn, nil
}

// NearbySpawn annotates a spawn with the caller's distance and whether the
// caller already collected it.
type NearbySpawn struct {
	Spawn          models.CollectibleSpawn `json:"spawn"`
	DistanceMeters float64                 `json:"distance_meters"`
	Collected      bool                    `json:"collected"`
}

// ListNearby returns active, unexpired spawns within radiusMeters of the
// center, bounding-box prefiltered in SQL then exact-filtered with
// Haversine.
func (s *CollectibleService) ListNearby(userID uint, lat, lng, radiusMeters float64, typeFilter string) ([]NearbySpawn, error) {
	if !geo.ValidCoords(lat, lng) || radiusMeters <= 0 {
		return nil, domain.ErrInvalidInput
	}
	now := s.now()
	spawns, err := s.repo.ListActiveInBox(lat, lng, radiusMeters, typeFilter, now)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(spawns))
	for _, sp := range spawns {
		ids = append(ids, sp.ID)
	}
	collected, err := s.repo.CollectedSpawnIDs(userID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]NearbySpawn, 0, len(spawns))
	for _, sp := range spawns {
		d := geo.HaversineMeters(lat, lng, sp.Latitude, sp.Longitude)
		if d > radiusMeters {
			continue
		}
		out = append(out, NearbySpawn{
			Spawn:          sp,
			DistanceMeters: d,
			Collected:      collected[sp.ID],
		})
	}
	return out, nil
}

// Reward describes what a successful collect paid out.
type Reward struct {
	SpawnID  uint   `json:"spawn_id"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

// Collect claims a spawn for a user: exactly one Collection row and exactly
// one reward transaction per (user, spawn), ever. Concurrent duplicates lose
// on the unique index and roll back the whole unit.
func (s *CollectibleService) Collect(userID, spawnID uint) (*Reward, error) {
	spawn, err := s.getSpawn(spawnID)
	if err != nil {
		return nil, err
	}
	if !spawn.Collectable(s.now()) {
		return nil, domain.ErrSpawnInactive
	}
	// Friendly pre-check; the unique index stays authoritative.
	collected, err := s.repo.HasCollected(userID, spawnID)
	if err != nil {
		return nil, err
	}
	if collected {
		return nil, domain.ErrAlreadyCollected
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateCollectionTx(tx, &models.Collection{
			UserID:      userID,
			SpawnID:     spawnID,
			CollectedAt: s.now(),
		}); err != nil {
			return err
		}
		_, err := s.ledger.AppendInTx(tx, userID, spawn.Currency, domain.TxEarn, spawn.Value,
			fmt.Sprintf("collected %s", spawn.Type),
			map[string]interface{}{"spawn_id": spawnID})
		return err
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, domain.ErrAlreadyCollected
		}
		return nil, err
	}
	return &Reward{
		SpawnID:  spawnID,
		Type:     spawn.Type,
		Currency: spawn.Currency,
		Amount:   spawn.Value,
	}, nil
}

func (s *CollectibleService) ListCollections(userID uint, limit, offset int) ([]models.Collection, error) {
	return s.repo.ListCollections(userID, limit, offset)
}

// SweepExpired deactivates spawns past their expiry. Invoked from the cron
// schedule; correctness never depends on it because Collect re-checks.
func (s *CollectibleService) SweepExpired() (int64, error) {
	return s.repo.DeactivateExpired(s.now())
}
