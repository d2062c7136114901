package handler

import (
	"net/http"

	"woofpack/internal/domain"

	"github.com/gin-gonic/gin"
)

var statusByCode = map[string]int{
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_AMOUNT":       http.StatusBadRequest,
	"UNKNOWN_ACCOUNT":      http.StatusNotFound,
	"PROPOSAL_NOT_FOUND":   http.StatusNotFound,
	"SPAWN_NOT_FOUND":      http.StatusNotFound,
	"SELF_TRANSFER":        http.StatusConflict,
	"DUPLICATE_VOTE":       http.StatusConflict,
	"ALREADY_COLLECTED":    http.StatusConflict,
	"INSUFFICIENT_BALANCE": http.StatusUnprocessableEntity,
	"INSUFFICIENT_STAKE":   http.StatusUnprocessableEntity,
	"VOTING_CLOSED":        http.StatusGone,
	"SPAWN_INACTIVE":       http.StatusGone,
	"FORBIDDEN":            http.StatusForbidden,
	"INTERNAL":             http.StatusInternalServerError,
}

// fail writes the structured failure shared by all REST handlers: a stable
// code plus a human-readable message, never storage-layer detail.
func fail(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"code": code, "error": domain.MessageOf(err)})
}
