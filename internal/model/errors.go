package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already in progress")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrGameCompleted      = errors.New("game is already complete")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrNotHost        = errors.New("player is not the host")

	// Turn errors
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNotYourTurn      = errors.New("not this player's turn")
	ErrAlreadyFlipped   = errors.New("player has already flipped this turn")
	ErrTurnBlocked      = errors.New("turn progression is paused")

	// Face-off errors
	ErrNoActiveFaceoff   = errors.New("no face-off in progress")
	ErrFaceoffInProgress = errors.New("a face-off must be resolved first")
	ErrUnknownLoser      = errors.New("player is not part of the face-off")

	// Deck errors. An exhausted draw pile is not surfaced to clients; it
	// triggers game completion instead.
	ErrEmptyDeck = errors.New("draw pile is empty")

	// Session errors
	ErrInvalidToken = errors.New("invalid session token")
)
