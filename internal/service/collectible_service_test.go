package service

import (
	"sync"
	"testing"
	"time"

	"woofpack/internal/domain"
	"woofpack/internal/models"
	"woofpack/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCollectibles(t *testing.T, db *gorm.DB, ledger *LedgerService) *CollectibleService {
	t.Helper()
	return NewCollectibleService(db, repository.NewCollectibleRepository(db), ledger)
}

func TestSpawnAndCollect(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	col := newCollectibles(t, db, ledger)
	u := createUser(t, db, "rex")

	spawn, err := col.SpawnCollectible(domain.SpawnBone, 47.6062, -122.3321, 15, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyBones, spawn.Currency)
	assert.True(t, spawn.IsActive)
	assert.Nil(t, spawn.ExpiresAt)

	reward, err := col.Collect(u.ID, spawn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyBones, reward.Currency)
	assert.Equal(t, int64(15), reward.Amount)

	bal, err := ledger.GetBalance(u.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(15), bal)

	_, err = col.Collect(u.ID, spawn.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCollected)
}

func TestYarnBallRewardsYarn(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	col := newCollectibles(t, db, ledger)
	u := createUser(t, db, "rex")

	spawn, err := col.SpawnCollectible(domain.SpawnYarnBall, 1, 1, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyYarn, spawn.Currency)

	reward, err := col.Collect(u.ID, spawn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyYarn, reward.Currency)

	yarn, err := ledger.GetBalance(u.ID, domain.CurrencyYarn)
	require.NoError(t, err)
	assert.Equal(t, int64(8), yarn)
	bones, err := ledger.GetBalance(u.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bones)
}

func TestSpawnValidation(t *testing.T) {
	db := newTestDB(t)
	col := newCollectibles(t, db, newLedger(t, db))

	_, err := col.SpawnCollectible("GOLD_COIN", 0, 0, 5, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = col.SpawnCollectible(domain.SpawnBone, 91, 0, 5, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = col.SpawnCollectible(domain.SpawnBone, 0, 181, 5, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = col.SpawnCollectible(domain.SpawnBone, 0, 0, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCollectExpiredOrInactive(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	col := newCollectibles(t, db, ledger)
	u := createUser(t, db, "rex")

	spawn, err := col.SpawnCollectible(domain.SpawnBall, 2, 2, 5, time.Hour)
	require.NoError(t, err)

	// after expiry the spawn is dead even before the sweeper runs
	col.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = col.Collect(u.ID, spawn.ID)
	assert.ErrorIs(t, err, domain.ErrSpawnInactive)

	col.now = time.Now
	require.NoError(t, col.Deactivate(spawn.ID))
	_, err = col.Collect(u.ID, spawn.ID)
	assert.ErrorIs(t, err, domain.ErrSpawnInactive)

	_, err = col.Collect(u.ID, 9999)
	assert.ErrorIs(t, err, domain.ErrSpawnNotFound)

	bal, err := ledger.GetBalance(u.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}

func TestConcurrentCollectSingleReward(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	col := newCollectibles(t, db, ledger)
	u := createUser(t, db, "rex")

	spawn, err := col.SpawnCollectible(domain.SpawnStick, 3, 3, 20, 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = col.Collect(u.ID, spawn.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyCollected)
		}
	}
	assert.Equal(t, 1, ok)

	var collections, rewards int64
	require.NoError(t, db.Model(&models.Collection{}).Where("spawn_id = ?", spawn.ID).Count(&collections).Error)
	require.NoError(t, db.Model(&models.Transaction{}).Where("user_id = ?", u.ID).Count(&rewards).Error)
	assert.Equal(t, int64(1), collections)
	assert.Equal(t, int64(1), rewards)
	bal, err := ledger.GetBalance(u.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(20), bal)
}

func TestListNearby(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	col := newCollectibles(t, db, ledger)
	u := createUser(t, db, "rex")

	near, err := col.SpawnCollectible(domain.SpawnBone, 47.6062, -122.3321, 5, 0)
	require.NoError(t, err)
	// ~135 m away, inside a 1 km radius
	inside, err := col.SpawnCollectible(domain.SpawnBall, 47.6072, -122.3311, 5, 0)
	require.NoError(t, err)
	// ~800 m due east: longitude degrees shrink at this latitude, so the
	// prefilter box must stretch to keep it
	east, err := col.SpawnCollectible(domain.SpawnBall, 47.6062, -122.321443, 5, 0)
	require.NoError(t, err)
	// a full degree of latitude is ~111 km away
	_, err = col.SpawnCollectible(domain.SpawnStick, 48.6062, -122.3321, 5, 0)
	require.NoError(t, err)

	_, err = col.Collect(u.ID, near.ID)
	require.NoError(t, err)

	spawns, err := col.ListNearby(u.ID, 47.6062, -122.3321, 1000, "")
	require.NoError(t, err)
	require.Len(t, spawns, 3)
	byID := map[uint]NearbySpawn{}
	for _, s := range spawns {
		byID[s.Spawn.ID] = s
	}
	assert.True(t, byID[near.ID].Collected)
	assert.False(t, byID[inside.ID].Collected)
	assert.Less(t, byID[near.ID].DistanceMeters, 1.0)
	assert.InDelta(t, 150, byID[inside.ID].DistanceMeters, 50)
	assert.InDelta(t, 800, byID[east.ID].DistanceMeters, 20)

	// type filter narrows the result
	balls, err := col.ListNearby(u.ID, 47.6062, -122.3321, 1000, domain.SpawnBall)
	require.NoError(t, err)
	require.Len(t, balls, 2)

	_, err = col.ListNearby(u.ID, 47.6062, -122.3321, 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSweepExpired(t *testing.T) {
	db := newTestDB(t)
	col := newCollectibles(t, db, newLedger(t, db))

	expiring, err := col.SpawnCollectible(domain.SpawnBone, 5, 5, 5, time.Minute)
	require.NoError(t, err)
	forever, err := col.SpawnCollectible(domain.SpawnBone, 6, 6, 5, 0)
	require.NoError(t, err)

	col.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err := col.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// fresh destination per lookup; a reused struct would leak its primary
	// key into the second query's conditions
	var swept models.CollectibleSpawn
	require.NoError(t, db.First(&swept, expiring.ID).Error)
	assert.False(t, swept.IsActive)
	var kept models.CollectibleSpawn
	require.NoError(t, db.First(&kept, forever.ID).Error)
	assert.True(t, kept.IsActive)

	// sweeping again finds nothing left
	n, err = col.SweepExpired()
	require.NoError(t, err)
	assert.Zero(t, n)
}
