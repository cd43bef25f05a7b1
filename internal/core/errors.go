package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeRoomNotFound       = "room_not_found"
	ErrCodeNameEmpty          = "name_empty"
	ErrCodeNameTaken          = "name_taken"
	ErrCodeAlreadyInRoom      = "already_in_room"
	ErrCodeAlreadyInAnyRoom   = "already_in_any_room"
	ErrCodeNotInRoom          = "not_in_room"
	ErrCodeNotAdmin           = "not_admin"
	ErrCodeGameAlreadyStarted = "game_already_started"
	ErrCodeGameNotRunning     = "game_not_running"
	ErrCodeRoomNotReady       = "room_not_ready"
	ErrCodeNotYourTurn        = "not_your_turn"
	ErrCodeDimensionMismatch  = "dimension_mismatch"
	ErrCodeOutOfBounds        = "out_of_bounds"
	ErrCodeCellOccupied       = "cell_occupied"
	ErrCodeInvalidShape       = "invalid_shape"
	ErrCodeInvalidSettings    = "invalid_settings"
	ErrCodeInternal           = "internal"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeInvalidMessage     = "invalid_message"
	ErrCodeUnsupportedVersion = "unsupported_version"
)

// User-facing errors. They are recoverable and reported to the requesting client.
var (
	ErrBadRequest         = coreError(ErrCodeBadRequest, "bad request")
	ErrRoomNotFound       = coreError(ErrCodeRoomNotFound, "room does not exist")
	ErrNameEmpty          = coreError(ErrCodeNameEmpty, "name is empty")
	ErrNameTaken          = coreError(ErrCodeNameTaken, "name already in use")
	ErrAlreadyInRoom      = coreError(ErrCodeAlreadyInRoom, "already in this room")
	ErrAlreadyInAnyRoom   = coreError(ErrCodeAlreadyInAnyRoom, "already in a room")
	ErrNotInRoom          = coreError(ErrCodeNotInRoom, "not in a room")
	ErrNotAdmin           = coreError(ErrCodeNotAdmin, "only the room admin can do that")
	ErrGameAlreadyStarted = coreError(ErrCodeGameAlreadyStarted, "room already in game")
	ErrGameNotRunning     = coreError(ErrCodeGameNotRunning, "no game running")
	ErrRoomNotReady       = coreError(ErrCodeRoomNotReady, "a game needs exactly two players")
	ErrNotYourTurn        = coreError(ErrCodeNotYourTurn, "not your turn")
	ErrDimensionMismatch  = coreError(ErrCodeDimensionMismatch, "position has the wrong number of dimensions")
	ErrOutOfBounds        = coreError(ErrCodeOutOfBounds, "position outside the board")
	ErrCellOccupied       = coreError(ErrCodeCellOccupied, "cell already occupied")
	ErrInvalidShape       = coreError(ErrCodeInvalidShape, "unknown shape or color")
	ErrInvalidSettings    = coreError(ErrCodeInvalidSettings, "settings out of range")
)

// errInternalReport is what a client sees when its request hit an internal fault.
var errInternalReport = coreError(ErrCodeInternal, "internal error")

// ErrInternal marks a broken caller contract. It is never caused by player input.
var ErrInternal = errors.New("internal invariant violated")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// AsCoreError extracts the user-facing error from err, if any.
func AsCoreError(err error) (*CoreError, bool) {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
