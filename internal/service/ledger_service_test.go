package service

import (
	"errors"
	"sync"
	"testing"

	"woofpack/internal/domain"
	"woofpack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBalanceIsFoldOfTransactions(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	u := createUser(t, db, "rex")

	for _, amt := range []int64{40, 35, 25} {
		_, err := ledger.Append(u.ID, domain.CurrencyBones, domain.TxEarn, amt, "walk reward", nil)
		require.NoError(t, err)
	}
	bal, err := ledger.GetBalance(u.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)

	_, err = ledger.Spend(u.ID, domain.CurrencyBones, domain.TxSpend, 30, "treat", nil, nil)
	require.NoError(t, err)
	bal, err = ledger.GetBalance(u.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(70), bal)

	// the projection row must agree with a full fold of the log
	fold, err := ledger.repo.FoldBalance(u.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(70), fold)

	// currencies are independent axes
	yarn, err := ledger.GetBalance(u.ID, domain.CurrencyYarn)
	require.NoError(t, err)
	assert.Equal(t, int64(0), yarn)
}

func TestAppendRejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	u := createUser(t, db, "rex")

	_, err := ledger.Append(u.ID, domain.CurrencyBones, domain.TxEarn, 0, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = ledger.Append(u.ID, domain.CurrencyBones, domain.TxEarn, -5, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = ledger.Append(u.ID, domain.CurrencyBones, "NOPE", 5, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.Append(u.ID, "DOUBLOONS", domain.TxEarn, 5, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSpendInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	u := createUser(t, db, "rex")

	_, err := ledger.Append(u.ID, domain.CurrencyBones, domain.TxEarn, 10, "", nil)
	require.NoError(t, err)
	_, err = ledger.Spend(u.ID, domain.CurrencyBones, domain.TxSpend, 11, "", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	bal, err := ledger.GetBalance(u.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(10), bal)
}

func TestSpendAttachFailureRollsBackDebit(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	u := createUser(t, db, "rex")

	_, err := ledger.Append(u.ID, domain.CurrencyBones, domain.TxEarn, 50, "", nil)
	require.NoError(t, err)

	boom := errors.New("attach failed")
	_, err = ledger.Spend(u.ID, domain.CurrencyBones, domain.TxSpend, 20, "", nil,
		func(tx *gorm.DB, _ *models.Transaction) error { return boom })
	assert.ErrorIs(t, err, boom)

	// the debit must not survive the rollback
	bal, err := ledger.GetBalance(u.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(50), bal)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("kind = ?", domain.TxSpend).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestTransfer(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	from := createUser(t, db, "rex")
	to := createUser(t, db, "luna")

	_, err := ledger.Append(from.ID, domain.CurrencyBones, domain.TxEarn, 100, "", nil)
	require.NoError(t, err)

	require.NoError(t, ledger.Transfer(from.ID, to.ID, domain.CurrencyBones, 60, "snacks"))

	fromBal, err := ledger.GetBalance(from.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(40), fromBal)
	toBal, err := ledger.GetBalance(to.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(60), toBal)

	// a successful transfer writes exactly two rows, one per side
	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	// 40 left, a second 50 must fail and write nothing
	err = ledger.Transfer(from.ID, to.ID, domain.CurrencyBones, 50, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestTransferRejections(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	from := createUser(t, db, "rex")
	inactive := createUser(t, db, "ghost")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	_, err := ledger.Append(from.ID, domain.CurrencyBones, domain.TxEarn, 100, "", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, ledger.Transfer(from.ID, from.ID, domain.CurrencyBones, 10, ""), domain.ErrSelfTransfer)
	assert.ErrorIs(t, ledger.Transfer(from.ID, 9999, domain.CurrencyBones, 10, ""), domain.ErrUnknownAccount)
	assert.ErrorIs(t, ledger.Transfer(from.ID, inactive.ID, domain.CurrencyBones, 10, ""), domain.ErrUnknownAccount)
	assert.ErrorIs(t, ledger.Transfer(from.ID, 0, domain.CurrencyBones, 0, ""), domain.ErrInvalidAmount)
}

func TestConcurrentTransfersSingleWinner(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	from := createUser(t, db, "rex")
	to := createUser(t, db, "luna")

	_, err := ledger.Append(from.ID, domain.CurrencyBones, domain.TxEarn, 100, "", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ledger.Transfer(from.ID, to.ID, domain.CurrencyBones, 60, "")
		}(i)
	}
	wg.Wait()

	ok, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)

	fromBal, err := ledger.GetBalance(from.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(40), fromBal)
	toBal, err := ledger.GetBalance(to.ID, domain.CurrencyBones)
	require.NoError(t, err)
	assert.Equal(t, int64(60), toBal)
}

func TestBalancesMap(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	u := createUser(t, db, "rex")

	_, err := ledger.Append(u.ID, domain.CurrencyBones, domain.TxEarn, 25, "", nil)
	require.NoError(t, err)
	_, err = ledger.Append(u.ID, domain.CurrencyYarn, domain.TxEarn, 7, "", nil)
	require.NoError(t, err)

	balances, err := ledger.Balances(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), balances[domain.CurrencyBones])
	assert.Equal(t, int64(7), balances[domain.CurrencyYarn])
}

func TestListTransactions(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	u := createUser(t, db, "rex")

	for i := 0; i < 5; i++ {
		_, err := ledger.Append(u.ID, domain.CurrencyBones, domain.TxEarn, 10, "", nil)
		require.NoError(t, err)
	}
	_, err := ledger.Append(u.ID, domain.CurrencyYarn, domain.TxEarn, 3, "", nil)
	require.NoError(t, err)

	all, err := ledger.ListTransactions(u.ID, "", 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	bones, err := ledger.ListTransactions(u.ID, domain.CurrencyBones, 3, 0)
	require.NoError(t, err)
	assert.Len(t, bones, 3)
}
