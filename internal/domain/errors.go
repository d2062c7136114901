package domain

import "errors"

// Error is a coded service error. The code is stable across the REST and
// websocket surfaces; handlers map it to an HTTP status, the gateway embeds
// it in an error event.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newErr(code, msg string) *Error { return &Error{Code: code, Message: msg} }

var (
	ErrInvalidInput        = newErr("INVALID_INPUT", "invalid request")
	ErrInvalidAmount       = newErr("INVALID_AMOUNT", "amount must be positive")
	ErrUnknownAccount      = newErr("UNKNOWN_ACCOUNT", "account not found")
	ErrSelfTransfer        = newErr("SELF_TRANSFER", "cannot transfer to yourself")
	ErrInsufficientBalance = newErr("INSUFFICIENT_BALANCE", "insufficient balance")
	ErrInsufficientStake   = newErr("INSUFFICIENT_STAKE", "insufficient balance to stake")
	ErrProposalNotFound    = newErr("PROPOSAL_NOT_FOUND", "proposal not found")
	ErrVotingClosed        = newErr("VOTING_CLOSED", "voting window has closed")
	ErrDuplicateVote       = newErr("DUPLICATE_VOTE", "already voted on this proposal")
	ErrSpawnNotFound       = newErr("SPAWN_NOT_FOUND", "collectible not found")
	ErrSpawnInactive       = newErr("SPAWN_INACTIVE", "collectible is no longer available")
	ErrAlreadyCollected    = newErr("ALREADY_COLLECTED", "collectible already collected")
	ErrForbidden           = newErr("FORBIDDEN", "not allowed")
	ErrInternal            = newErr("INTERNAL", "something went wrong")
)

// CodeOf extracts the stable code from err, or INTERNAL for anything
// that is not a domain error (storage and transport failures stay opaque).
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrInternal.Code
}

// MessageOf returns the user-facing message for err without leaking
// internals of non-domain errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ErrInternal.Message
}
