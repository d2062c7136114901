package handler

import (
	"net/http"
	"strconv"

	"woofpack/internal/middleware"
	"woofpack/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	ledger *service.LedgerService
}

func NewWalletHandler(ledger *service.LedgerService) *WalletHandler {
	return &WalletHandler{ledger: ledger}
}

// GetBalances returns the caller's balance in both currencies.
func (h *WalletHandler) GetBalances(c *gin.Context) {
	userID := middleware.GetUserID(c)
	balances, err := h.ledger.Balances(userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	currency := c.Query("currency")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.ledger.ListTransactions(userID, currency, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

type transferRequest struct {
	ToUserID uint   `json:"to_user_id" binding:"required"`
	Currency string `json:"currency" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
	Note     string `json:"note"`
}

func (h *WalletHandler) Transfer(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.ledger.Transfer(userID, req.ToUserID, req.Currency, req.Amount, req.Note); err != nil {
		fail(c, err)
		return
	}
	balance, err := h.ledger.GetBalance(userID, req.Currency)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance, "currency": req.Currency})
}
