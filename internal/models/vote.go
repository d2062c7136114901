package models

import (
	"time"
)

// Vote is one account's immutable ballot on a proposal. The unique index on
// (user_id, proposal_id) backs the duplicate-vote conflict.
type Vote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex:idx_vote_user_proposal,priority:1;not null" json:"user_id"`
	ProposalID  uint      `gorm:"uniqueIndex:idx_vote_user_proposal,priority:2;not null" json:"proposal_id"`
	Choice      string    `gorm:"size:10;not null;index" json:"choice"` // YES | NO | ABSTAIN
	StakeAmount int64     `gorm:"not null" json:"stake_amount"`
	Reason      string    `gorm:"size:255" json:"reason"`
	CreatedAt   time.Time `json:"created_at"`

	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Proposal Proposal `gorm:"foreignKey:ProposalID" json:"-"`
}

func (Vote) TableName() string {
	return "votes"
}
