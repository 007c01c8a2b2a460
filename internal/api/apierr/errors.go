package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carriee-liuu/anomia-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes. The same codes travel inside WebSocket error
// events, so both surfaces speak one taxonomy.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeRoomFull           = "ROOM_FULL"
	CodeGameAlreadyStarted = "GAME_ALREADY_STARTED"
	CodeGameNotStarted     = "GAME_NOT_STARTED"
	CodeGameCompleted      = "GAME_COMPLETED"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeNotHost            = "NOT_HOST"
	CodeNotEnoughPlayers   = "NOT_ENOUGH_PLAYERS"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeAlreadyFlipped     = "ALREADY_FLIPPED"
	CodeTurnBlocked        = "TURN_BLOCKED"
	CodeNoActiveFaceoff    = "NO_ACTIVE_FACEOFF"
	CodeFaceoffInProgress  = "FACEOFF_IN_PROGRESS"
	CodeUnknownLoser       = "UNKNOWN_LOSER"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// FromError maps any error to its stable code and client-safe message
func FromError(err error) APIError {
	return toHTTPError(err).apiError
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrGameAlreadyStarted):
		return &httpError{http.StatusConflict, APIError{CodeGameAlreadyStarted, "Game already in progress"}}
	case errors.Is(err, model.ErrGameNotStarted):
		return &httpError{http.StatusConflict, APIError{CodeGameNotStarted, "Game has not started"}}
	case errors.Is(err, model.ErrGameCompleted):
		return &httpError{http.StatusConflict, APIError{CodeGameCompleted, "Game is already complete"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}
	case errors.Is(err, model.ErrNotEnoughPlayers):
		return &httpError{http.StatusConflict, APIError{CodeNotEnoughPlayers, "Not enough players to start"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrAlreadyFlipped):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyFlipped, "Already flipped this turn"}}
	case errors.Is(err, model.ErrTurnBlocked):
		return &httpError{http.StatusConflict, APIError{CodeTurnBlocked, "Waiting for more players to reconnect"}}
	case errors.Is(err, model.ErrNoActiveFaceoff):
		return &httpError{http.StatusConflict, APIError{CodeNoActiveFaceoff, "No face-off in progress"}}
	case errors.Is(err, model.ErrFaceoffInProgress):
		return &httpError{http.StatusConflict, APIError{CodeFaceoffInProgress, "A face-off must be resolved first"}}
	case errors.Is(err, model.ErrUnknownLoser):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownLoser, "Player is not part of the face-off"}}
	case errors.Is(err, model.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidToken, "Invalid session token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
