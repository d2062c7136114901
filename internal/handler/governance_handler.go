package handler

import (
	"net/http"
	"strconv"
	"time"

	"woofpack/internal/middleware"
	"woofpack/internal/models"
	"woofpack/internal/service"

	"github.com/gin-gonic/gin"
)

type GovernanceHandler struct {
	svc   *service.GovernanceService
	notif *service.NotificationService
}

func NewGovernanceHandler(svc *service.GovernanceService, notif *service.NotificationService) *GovernanceHandler {
	return &GovernanceHandler{svc: svc, notif: notif}
}

func proposalView(p *models.Proposal, now time.Time) gin.H {
	return gin.H{
		"id":               p.ID,
		"author_id":        p.AuthorID,
		"type":             p.Type,
		"title":            p.Title,
		"description":      p.Description,
		"budget_bones":     p.BudgetBones,
		"voting_starts_at": p.VotingStartsAt,
		"voting_ends_at":   p.VotingEndsAt,
		"min_vote_stake":   p.MinVoteStake,
		"status":           p.Status(now),
		"created_at":       p.CreatedAt,
	}
}

type createProposalRequest struct {
	Type         string     `json:"type" binding:"required"`
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	BudgetBones  *int64     `json:"budget_bones"`
	VotingEndsAt *time.Time `json:"voting_ends_at"`
	MinVoteStake int64      `json:"min_vote_stake"`
}

func (h *GovernanceHandler) CreateProposal(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req createProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.svc.CreateProposal(userID, service.CreateProposalInput{
		Type:         req.Type,
		Title:        req.Title,
		Description:  req.Description,
		BudgetBones:  req.BudgetBones,
		VotingEndsAt: req.VotingEndsAt,
		MinVoteStake: req.MinVoteStake,
	})
	if err != nil {
		fail(c, err)
		return
	}
	// Receipt for the author; failures here never undo the proposal.
	_ = h.notif.NotifyProposalCreated(userID, p.ID, p.Title)
	c.JSON(http.StatusCreated, gin.H{"proposal": proposalView(p, h.svc.Now())})
}

func (h *GovernanceHandler) ListProposals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.svc.ListProposals(c.Query("status"), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	now := h.svc.Now()
	views := make([]gin.H, 0, len(list))
	for i := range list {
		views = append(views, proposalView(&list[i], now))
	}
	c.JSON(http.StatusOK, gin.H{"proposals": views})
}

func (h *GovernanceHandler) GetProposal(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	p, err := h.svc.GetProposal(uint(id))
	if err != nil {
		fail(c, err)
		return
	}
	tally, err := h.svc.Tally(p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"proposal": proposalView(p, h.svc.Now()),
		"tally":    tally,
	})
}

type castVoteRequest struct {
	Choice      string `json:"choice" binding:"required"`
	StakeAmount int64  `json:"stake_amount"`
	Reason      string `json:"reason"`
}

func (h *GovernanceHandler) CastVote(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	v, err := h.svc.CastVote(userID, uint(id), req.Choice, req.StakeAmount, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vote": v})
}

func (h *GovernanceHandler) Tally(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	tally, err := h.svc.Tally(uint(id))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tally": tally})
}

type createStakeRequest struct {
	Amount    int64  `json:"amount" binding:"required"`
	Purpose   string `json:"purpose" binding:"required"`
	Reference string `json:"reference"`
}

func (h *GovernanceHandler) CreateStake(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req createStakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	st, err := h.svc.CreateStake(userID, req.Amount, req.Purpose, req.Reference)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stake": st})
}
