package models

import (
	"time"

	"woofpack/internal/domain"

	"gorm.io/gorm"
)

// Proposal is a governance item. Its status is derived from the voting
// window at read time rather than stored, so it can never drift from the
// clock: OPEN while now < VotingEndsAt, CLOSED after.
type Proposal struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	AuthorID       uint           `gorm:"not null;index" json:"author_id"`
	Type           string         `gorm:"size:30;not null;index" json:"type"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	BudgetBones    *int64         `json:"budget_bones,omitempty"`
	VotingStartsAt time.Time      `gorm:"not null" json:"voting_starts_at"`
	VotingEndsAt   time.Time      `gorm:"not null;index" json:"voting_ends_at"`
	MinVoteStake   int64          `gorm:"not null" json:"min_vote_stake"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Proposal) TableName() string {
	return "proposals"
}

func (p *Proposal) Status(now time.Time) string {
	if now.Before(p.VotingEndsAt) {
		return domain.ProposalOpen
	}
	return domain.ProposalClosed
}

// AcceptsVotes reports whether a vote cast at now falls inside [start, end).
func (p *Proposal) AcceptsVotes(now time.Time) bool {
	return !now.Before(p.VotingStartsAt) && now.Before(p.VotingEndsAt)
}
