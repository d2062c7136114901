package service

import (
	"errors"
	"fmt"
	"time"

	"woofpack/internal/domain"
	"woofpack/internal/models"
	"woofpack/internal/repository"

	"gorm.io/gorm"
)

// GovernanceService owns proposals, votes and stakes. Every stake it records
// is paired with a yarn debit committed in the same database transaction
// through LedgerService.Spend.
type GovernanceService struct {
	repo          *repository.GovernanceRepository
	ledger        *LedgerService
	proposalStake int64
	voteStake     int64
	votingWindow  time.Duration
	now           func() time.Time
}

func NewGovernanceService(repo *repository.GovernanceRepository, ledger *LedgerService, proposalStake, voteStake int64, votingWindow time.Duration) *GovernanceService {
	if proposalStake <= 0 {
		proposalStake = 100
	}
	if voteStake <= 0 {
		voteStake = 10
	}
	if votingWindow <= 0 {
		votingWindow = 7 * 24 * time.Hour
	}
	return &GovernanceService{
		repo:          repo,
		ledger:        ledger,
		proposalStake: proposalStake,
		voteStake:     voteStake,
		votingWindow:  votingWindow,
		now:           time.Now,
	}
}

type CreateProposalInput struct {
	Type         string
	Title        string
	Description  string
	BudgetBones  *int64
	VotingEndsAt *time.Time // nil = now + default window
	MinVoteStake int64      // <= 0 = default
}

// CreateProposal stakes the proposal deposit and opens the proposal. The
// yarn debit, the Stake record and the Proposal row commit atomically.
func (s *GovernanceService) CreateProposal(authorID uint, in CreateProposalInput) (*models.Proposal, error) {
	if in.Title == "" || in.Type == "" {
		return nil, domain.ErrInvalidInput
	}
	now := s.now()
	endsAt := now.Add(s.votingWindow)
	if in.VotingEndsAt != nil {
		if !in.VotingEndsAt.After(now) {
			return nil, domain.ErrInvalidInput
		}
		endsAt = *in.VotingEndsAt
	}
	minStake := in.MinVoteStake
	if minStake <= 0 {
		minStake = s.voteStake
	}
	p := &models.Proposal{
		AuthorID:       authorID,
		Type:           in.Type,
		Title:          in.Title,
		Description:    in.Description,
		BudgetBones:    in.BudgetBones,
		VotingStartsAt: now,
		VotingEndsAt:   endsAt,
		MinVoteStake:   minStake,
	}
	_, err := s.ledger.Spend(authorID, domain.CurrencyYarn, domain.TxSpend, s.proposalStake,
		"proposal stake: "+in.Title, nil,
		func(tx *gorm.DB, t *models.Transaction) error {
			if err := s.repo.CreateProposalTx(tx, p); err != nil {
				return err
			}
			return s.repo.CreateStakeTx(tx, &models.Stake{
				UserID:        authorID,
				Amount:        s.proposalStake,
				Purpose:       domain.StakeVoting,
				Reference:     fmt.Sprintf("proposal:%d", p.ID),
				TransactionID: t.ID,
			})
		})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, domain.ErrInsufficientStake
		}
		return nil, err
	}
	return p, nil
}

// CastVote records an immutable ballot, debiting the vote stake. A zero
// stakeAmount takes the default, raised to the proposal's floor; an explicit
// stake below the floor is rejected. Duplicate votes are rejected by the
// (user, proposal) unique index inside the same transaction as the debit,
// so a lost race leaves no partial state.
func (s *GovernanceService) CastVote(userID, proposalID uint, choice string, stakeAmount int64, reason string) (*models.Vote, error) {
	if !domain.ValidVoteChoice(choice) {
		return nil, domain.ErrInvalidInput
	}
	p, err := s.repo.GetProposal(proposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	if !p.AcceptsVotes(s.now()) {
		return nil, domain.ErrVotingClosed
	}
	// Friendly pre-check; the unique index stays authoritative.
	voted, err := s.repo.HasVoted(userID, proposalID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, domain.ErrDuplicateVote
	}
	// stakeAmount <= 0 means "use the default"; an explicit offer below the
	// proposal floor is refused rather than quietly charged higher.
	if stakeAmount <= 0 {
		stakeAmount = s.voteStake
		if stakeAmount < p.MinVoteStake {
			stakeAmount = p.MinVoteStake
		}
	} else if stakeAmount < p.MinVoteStake {
		return nil, domain.ErrInsufficientStake
	}
	v := &models.Vote{
		UserID:      userID,
		ProposalID:  proposalID,
		Choice:      choice,
		StakeAmount: stakeAmount,
		Reason:      reason,
	}
	_, err = s.ledger.Spend(userID, domain.CurrencyYarn, domain.TxSpend, stakeAmount,
		fmt.Sprintf("vote stake: proposal %d", proposalID), nil,
		func(tx *gorm.DB, t *models.Transaction) error {
			if err := s.repo.CreateVoteTx(tx, v); err != nil {
				return err
			}
			return s.repo.CreateStakeTx(tx, &models.Stake{
				UserID:        userID,
				Amount:        stakeAmount,
				Purpose:       domain.StakeVoting,
				Reference:     fmt.Sprintf("proposal:%d", proposalID),
				TransactionID: t.ID,
			})
		})
	if err != nil {
		switch {
		case repository.IsDuplicateKey(err):
			return nil, domain.ErrDuplicateVote
		case errors.Is(err, domain.ErrInsufficientBalance):
			return nil, domain.ErrInsufficientStake
		}
		return nil, err
	}
	return v, nil
}

// CreateStake is the generic escrow primitive for flows outside proposals
// and votes (reward pools, penalties).
func (s *GovernanceService) CreateStake(userID uint, amount int64, purpose, reference string) (*models.Stake, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	switch purpose {
	case domain.StakeVoting, domain.StakeRewardPool, domain.StakePenalty:
	default:
		return nil, domain.ErrInvalidInput
	}
	st := &models.Stake{
		UserID:    userID,
		Amount:    amount,
		Purpose:   purpose,
		Reference: reference,
	}
	_, err := s.ledger.Spend(userID, domain.CurrencyYarn, domain.TxSpend, amount,
		"stake: "+purpose, nil,
		func(tx *gorm.DB, t *models.Transaction) error {
			st.TransactionID = t.ID
			return s.repo.CreateStakeTx(tx, st)
		})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return nil, domain.ErrInsufficientStake
		}
		return nil, err
	}
	return st, nil
}

func (s *GovernanceService) GetProposal(id uint) (*models.Proposal, error) {
	p, err := s.repo.GetProposal(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *GovernanceService) ListProposals(status string, limit, offset int) ([]models.Proposal, error) {
	return s.repo.ListProposals(status, s.now(), limit, offset)
}

// Tally is a pure read over the votes table, computed on demand.
func (s *GovernanceService) Tally(proposalID uint) ([]repository.ChoiceTally, error) {
	if _, err := s.GetProposal(proposalID); err != nil {
		return nil, err
	}
	return s.repo.TallyVotes(proposalID)
}

// Now returns the service clock, used by handlers for derived status.
func (s *GovernanceService) Now() time.Time { return s.now() }
