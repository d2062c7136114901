package service

import (
	"encoding/json"
	"sync"

	"woofpack/internal/domain"
	"woofpack/internal/models"
	"woofpack/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const lockStripes = 64

// LedgerService owns the append-only transaction log. All currency truth is
// derived from it; other services never read-modify-write a balance, they
// call Append/Spend/Transfer here.
//
// Balance check and the following debit run under a per-account mutex so two
// concurrent spends from one account cannot both pass the check. The mutex
// is striped by account id; operations on different accounts rarely contend
// and never logically block each other.
type LedgerService struct {
	db       *gorm.DB
	repo     *repository.LedgerRepository
	userRepo *repository.UserRepository
	locks    [lockStripes]sync.Mutex
}

func NewLedgerService(db *gorm.DB, repo *repository.LedgerRepository, userRepo *repository.UserRepository) *LedgerService {
	return &LedgerService{db: db, repo: repo, userRepo: userRepo}
}

func (s *LedgerService) lockFor(userID uint) *sync.Mutex {
	return &s.locks[userID%lockStripes]
}

// GetBalance returns the derived balance for (user, currency), clamped at
// zero for display. Reads the projection row; falls back to a full fold when
// the pair has no projection yet.
func (s *LedgerService) GetBalance(userID uint, currency string) (int64, error) {
	bal, err := s.balance(userID, currency)
	if err != nil {
		return 0, err
	}
	if bal < 0 {
		return 0, nil
	}
	return bal, nil
}

// balance is the unclamped fold used inside check-then-debit sections.
func (s *LedgerService) balance(userID uint, currency string) (int64, error) {
	bal, found, err := s.repo.ProjectedBalance(userID, currency)
	if err != nil {
		return 0, err
	}
	if found {
		return bal, nil
	}
	return s.repo.FoldBalance(userID, currency)
}

// Balances returns the projection rows for all currencies the user touched.
func (s *LedgerService) Balances(userID uint) (map[string]int64, error) {
	rows, err := s.repo.Balances(userID)
	if err != nil {
		return nil, err
	}
	out := map[string]int64{domain.CurrencyBones: 0, domain.CurrencyYarn: 0}
	for _, r := range rows {
		b := r.Balance
		if b < 0 {
			b = 0
		}
		out[r.Currency] = b
	}
	return out, nil
}

func marshalMetadata(metadata map[string]interface{}) string {
	if metadata == nil {
		return ""
	}
	b, _ := json.Marshal(metadata)
	return string(b)
}

// AppendInTx writes one transaction row plus its projection delta inside an
// already-open database transaction. Callers are responsible for any
// balance precondition.
func (s *LedgerService) AppendInTx(tx *gorm.DB, userID uint, currency, kind string, amount int64, reason string, metadata map[string]interface{}) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.IsCreditKind(kind) && !domain.IsDebitKind(kind) {
		return nil, domain.ErrInvalidInput
	}
	if !domain.ValidCurrency(currency) {
		return nil, domain.ErrInvalidInput
	}
	t := &models.Transaction{
		UserID:   userID,
		Currency: currency,
		Kind:     kind,
		Amount:   amount,
		Reason:   reason,
		Metadata: marshalMetadata(metadata),
	}
	if err := s.repo.CreateTx(tx, t); err != nil {
		return nil, err
	}
	delta := amount
	if domain.IsDebitKind(kind) {
		delta = -amount
	}
	if err := s.repo.ApplyDelta(tx, userID, currency, delta); err != nil {
		return nil, err
	}
	return t, nil
}

// Append is the mint/burn primitive: it records a validated transaction
// unconditionally. Components that debit must verify their precondition
// first (or use Spend, which does both under the account lock).
func (s *LedgerService) Append(userID uint, currency, kind string, amount int64, reason string, metadata map[string]interface{}) (*models.Transaction, error) {
	var t *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		t, err = s.AppendInTx(tx, userID, currency, kind, amount, reason, metadata)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Spend debits amount after re-deriving the balance inside the account's
// critical section. attach, when non-nil, runs in the same database
// transaction as the debit so dependent records (stakes, votes) commit with
// it or not at all.
func (s *LedgerService) Spend(userID uint, currency, kind string, amount int64, reason string, metadata map[string]interface{}, attach func(tx *gorm.DB, t *models.Transaction) error) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.IsDebitKind(kind) {
		return nil, domain.ErrInvalidInput
	}
	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	bal, err := s.balance(userID, currency)
	if err != nil {
		return nil, err
	}
	if bal < amount {
		return nil, domain.ErrInsufficientBalance
	}
	var t *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		t, err = s.AppendInTx(tx, userID, currency, kind, amount, reason, metadata)
		if err != nil {
			return err
		}
		if attach != nil {
			return attach(tx, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Transfer moves amount between accounts: one TRANSFER_OUT on from and one
// EARN on to, committed in a single database transaction. The balance check
// and the debit share the from-account critical section.
func (s *LedgerService) Transfer(fromID, toID uint, currency string, amount int64, note string) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if fromID == toID {
		return domain.ErrSelfTransfer
	}
	to, err := s.userRepo.GetByID(toID)
	if err != nil || to == nil || !to.IsActive {
		return domain.ErrUnknownAccount
	}

	mu := s.lockFor(fromID)
	mu.Lock()
	defer mu.Unlock()

	bal, err := s.balance(fromID, currency)
	if err != nil {
		return err
	}
	if bal < amount {
		return domain.ErrInsufficientBalance
	}
	ref := uuid.NewString()
	reason := note
	if reason == "" {
		reason = "transfer"
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.AppendInTx(tx, fromID, currency, domain.TxTransferOut, amount, reason,
			map[string]interface{}{"to_user_id": toID, "transfer_ref": ref}); err != nil {
			return err
		}
		if _, err := s.AppendInTx(tx, toID, currency, domain.TxEarn, amount, reason,
			map[string]interface{}{"from_user_id": fromID, "transfer_ref": ref}); err != nil {
			return err
		}
		return nil
	})
}

func (s *LedgerService) ListTransactions(userID uint, currency string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(userID, currency, limit, offset)
}
