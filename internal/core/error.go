// FILE: internal/core/error.go
package core

// Error codes
const (
	ErrGameNotFound      = "GAME_NOT_FOUND"
	ErrIllegalMove       = "ILLEGAL_MOVE"
	ErrNothingToDraw     = "NOTHING_TO_DRAW"
	ErrNoUndo            = "NO_UNDO"
	ErrNoRedo            = "NO_REDO"
	ErrNoHints           = "NO_HINTS"
	ErrNoHint            = "NO_HINT"
	ErrNotTrivial        = "NOT_TRIVIALLY_WINNABLE"
	ErrGameOver          = "GAME_OVER"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidDeal       = "INVALID_DEAL"
	ErrDealNotFound      = "DEAL_NOT_FOUND"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrResourceLimit     = "RESOURCE_LIMIT"
)
