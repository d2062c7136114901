package repository

import (
	"errors"
	"time"

	"woofpack/internal/domain"
	"woofpack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository is the data access layer for the append-only transaction
// log and its running-balance projection. Writes take an open *gorm.DB
// transaction so the service can commit the log entry, the projection and
// any dependent records as one atomic unit.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) CreateTx(tx *gorm.DB, t *models.Transaction) error {
	return tx.Create(t).Error
}

// ApplyDelta upserts the (user, currency) projection row by delta.
func (r *LedgerRepository) ApplyDelta(tx *gorm.DB, userID uint, currency string, delta int64) error {
	row := models.AccountBalance{
		UserID:    userID,
		Currency:  currency,
		Balance:   delta,
		UpdatedAt: time.Now(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "currency"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
}

// ProjectedBalance reads the projection row; found=false means no ledger
// activity exists yet for the pair.
func (r *LedgerRepository) ProjectedBalance(userID uint, currency string) (int64, bool, error) {
	var row models.AccountBalance
	err := r.db.Where("user_id = ? AND currency = ?", userID, currency).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return row.Balance, true, nil
}

// FoldBalance recomputes the balance from the full log: credit kinds add,
// debit kinds subtract.
func (r *LedgerRepository) FoldBalance(userID uint, currency string) (int64, error) {
	var sum int64
	err := r.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN kind IN (?, ?, ?) THEN amount ELSE -amount END), 0)",
			domain.TxEarn, domain.TxBonus, domain.TxRefund).
		Where("user_id = ? AND currency = ?", userID, currency).
		Scan(&sum).Error
	return sum, err
}

func (r *LedgerRepository) List(userID uint, currency string, limit, offset int) ([]models.Transaction, error) {
	q := r.db.Where("user_id = ?", userID)
	if currency != "" {
		q = q.Where("currency = ?", currency)
	}
	var list []models.Transaction
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *LedgerRepository) Balances(userID uint) ([]models.AccountBalance, error) {
	var rows []models.AccountBalance
	err := r.db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}
