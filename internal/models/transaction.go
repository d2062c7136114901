package models

import (
	"time"
)

// Transaction is one immutable entry in the value ledger. Balances are the
// fold of all transactions for a (user, currency) pair; rows are never
// updated or deleted.
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_tx_user_currency,priority:1" json:"user_id"`
	Currency  string    `gorm:"size:8;not null;index:idx_tx_user_currency,priority:2" json:"currency"`
	Kind      string    `gorm:"size:20;not null;index" json:"kind"`
	Amount    int64     `gorm:"not null" json:"amount"` // always positive; kind determines sign
	Reason    string    `gorm:"size:255" json:"reason"`
	Metadata  string    `gorm:"type:text" json:"metadata"` // JSON payload
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// AccountBalance is the derived running-balance projection, maintained in
// the same database transaction as every ledger append. The log stays the
// source of truth; this row only avoids O(n) folds on reads.
type AccountBalance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_balance_user_currency,priority:1;not null" json:"user_id"`
	Currency  string    `gorm:"uniqueIndex:idx_balance_user_currency,priority:2;size:8;not null" json:"currency"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AccountBalance) TableName() string {
	return "account_balances"
}
