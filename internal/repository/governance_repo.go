package repository

import (
	"errors"
	"strings"
	"time"

	"woofpack/internal/models"

	"gorm.io/gorm"
)

type GovernanceRepository struct {
	db *gorm.DB
}

func NewGovernanceRepository(db *gorm.DB) *GovernanceRepository {
	return &GovernanceRepository{db: db}
}

func (r *GovernanceRepository) CreateProposalTx(tx *gorm.DB, p *models.Proposal) error {
	return tx.Create(p).Error
}

func (r *GovernanceRepository) GetProposal(id uint) (*models.Proposal, error) {
	var p models.Proposal
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProposals returns proposals newest first. status filters on the
// derived window state: OPEN = end in the future, CLOSED = end passed.
func (r *GovernanceRepository) ListProposals(status string, now time.Time, limit, offset int) ([]models.Proposal, error) {
	if limit <= 0 {
		limit = 20
	}
	q := r.db.Order("created_at DESC")
	switch status {
	case "OPEN":
		q = q.Where("voting_ends_at > ?", now)
	case "CLOSED":
		q = q.Where("voting_ends_at <= ?", now)
	}
	var list []models.Proposal
	err := q.Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *GovernanceRepository) CreateVoteTx(tx *gorm.DB, v *models.Vote) error {
	return tx.Create(v).Error
}

func (r *GovernanceRepository) HasVoted(userID, proposalID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Vote{}).
		Where("user_id = ? AND proposal_id = ?", userID, proposalID).
		Count(&count).Error
	return count > 0, err
}

func (r *GovernanceRepository) CreateStakeTx(tx *gorm.DB, s *models.Stake) error {
	return tx.Create(s).Error
}

// ChoiceTally is one row of an on-demand vote tally.
type ChoiceTally struct {
	Choice      string `json:"choice"`
	Votes       int64  `json:"votes"`
	StakedTotal int64  `json:"staked_total"`
}

// TallyVotes counts ballots and staked yarn per choice. Computed on every
// read, never cached.
func (r *GovernanceRepository) TallyVotes(proposalID uint) ([]ChoiceTally, error) {
	var rows []ChoiceTally
	err := r.db.Model(&models.Vote{}).
		Select("choice, COUNT(*) AS votes, COALESCE(SUM(stake_amount), 0) AS staked_total").
		Where("proposal_id = ?", proposalID).
		Group("choice").
		Scan(&rows).Error
	return rows, err
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// The string checks cover drivers that predate gorm's error translation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
