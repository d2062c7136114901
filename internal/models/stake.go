package models

import (
	"time"
)

// Stake records yarn locked against a purpose. Every stake is paired with a
// ledger debit of the same amount created in the same database transaction;
// once created it is a permanent ledger fact (stakes are burned, not
// released).
type Stake struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Amount        int64     `gorm:"not null" json:"amount"`
	Purpose       string    `gorm:"size:20;not null;index" json:"purpose"` // VOTING | REWARD_POOL | PENALTY
	Reference     string    `gorm:"size:128" json:"reference"`             // e.g. proposal:12
	TransactionID uint      `gorm:"not null" json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Stake) TableName() string {
	return "stakes"
}
