// Package ws carries the real-time channel: the inbound command protocol,
// outbound event types, per-room hubs, and the gorilla websocket pumps.
package ws

import (
	"encoding/json"
	"fmt"

	"github.com/carriee-liuu/anomia-go/internal/api/response"
)

// CommandType tags an inbound client message
type CommandType string

const (
	CommandJoinRoom       CommandType = "joinRoom"
	CommandStartGame      CommandType = "startGame"
	CommandFlipCard       CommandType = "flipCard"
	CommandSubmitAnswer   CommandType = "submitAnswer"
	CommandResolveFaceoff CommandType = "resolveFaceoff"
	CommandLeaveRoom      CommandType = "leaveRoom"
)

// Command is the parsed form of an inbound message. The concrete types
// below form a closed set; dispatch switches over them exhaustively so a
// new command cannot be added without handling it.
type Command interface {
	isCommand()
}

// JoinRoomCommand requests joining (or reconnecting to) the room this
// connection is scoped to. RoomCode is accepted for wire compatibility
// but the connection's own room is authoritative.
type JoinRoomCommand struct {
	Name         string `json:"name"`
	RoomCode     string `json:"roomCode"`
	SessionToken string `json:"sessionToken"`
}

// StartGameCommand asks the server to start the game (host only)
type StartGameCommand struct{}

// FlipCardCommand asks to flip the current player's card
type FlipCardCommand struct {
	PlayerID string `json:"playerId"`
}

// SubmitAnswerCommand carries a shouted answer. Face-off resolution is
// trust-based via resolveFaceoff, so answers are accepted and ignored.
type SubmitAnswerCommand struct {
	Answer string `json:"answer"`
}

// ResolveFaceoffCommand settles the active face-off by naming its loser
type ResolveFaceoffCommand struct {
	LoserID string `json:"loserId"`
}

// LeaveRoomCommand leaves the room immediately, with no grace period
type LeaveRoomCommand struct {
	PlayerID string `json:"playerId"`
}

func (JoinRoomCommand) isCommand()       {}
func (StartGameCommand) isCommand()      {}
func (FlipCardCommand) isCommand()       {}
func (SubmitAnswerCommand) isCommand()   {}
func (ResolveFaceoffCommand) isCommand() {}
func (LeaveRoomCommand) isCommand()      {}

type envelope struct {
	Type CommandType `json:"type"`
}

// ParseCommand decodes an inbound message into its command variant.
// Unknown or malformed messages are protocol errors owed only to the
// sending connection.
func ParseCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	switch env.Type {
	case CommandJoinRoom:
		var cmd JoinRoomCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("malformed joinRoom: %w", err)
		}
		return cmd, nil
	case CommandStartGame:
		return StartGameCommand{}, nil
	case CommandFlipCard:
		var cmd FlipCardCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("malformed flipCard: %w", err)
		}
		return cmd, nil
	case CommandSubmitAnswer:
		var cmd SubmitAnswerCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("malformed submitAnswer: %w", err)
		}
		return cmd, nil
	case CommandResolveFaceoff:
		var cmd ResolveFaceoffCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("malformed resolveFaceoff: %w", err)
		}
		return cmd, nil
	case CommandLeaveRoom:
		var cmd LeaveRoomCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return nil, fmt.Errorf("malformed leaveRoom: %w", err)
		}
		return cmd, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
}

// EventType tags an outbound server event
type EventType string

const (
	EventRoomJoined         EventType = "roomJoined"
	EventPlayerJoined       EventType = "playerJoined"
	EventPlayerDisconnected EventType = "playerDisconnected"
	EventPlayerLeft         EventType = "playerLeft"
	EventGameStarted        EventType = "gameStarted"
	EventCardFlipped        EventType = "cardFlipped"
	EventWildCardDrawn      EventType = "wildCardDrawn"
	EventFaceoffDetected    EventType = "faceoffDetected"
	EventFaceoffResolved    EventType = "faceoffResolved"
	EventGameEnded          EventType = "gameEnded"
	EventError              EventType = "error"
)

// RoomJoinedEvent is sent only to the joining connection. It is the one
// place a session token ever travels to a client.
type RoomJoinedEvent struct {
	Type         EventType       `json:"type"`
	Room         response.Room   `json:"room"`
	Player       response.Player `json:"player"`
	SessionToken string          `json:"sessionToken"`
	Reconnected  bool            `json:"reconnected"`
}

// PlayerJoinedEvent announces a new roster member
type PlayerJoinedEvent struct {
	Type   EventType       `json:"type"`
	Player response.Player `json:"player"`
	Room   response.Room   `json:"room"`
}

// PlayerDisconnectedEvent announces a dropped connection whose seat is
// still held for reconnection. The snapshot reflects any turn repair the
// disconnect caused.
type PlayerDisconnectedEvent struct {
	Type     EventType     `json:"type"`
	PlayerID string        `json:"playerId"`
	Room     response.Room `json:"room"`
}

// PlayerLeftEvent announces a permanent departure
type PlayerLeftEvent struct {
	Type      EventType     `json:"type"`
	PlayerID  string        `json:"playerId"`
	Name      string        `json:"name"`
	NewHostID string        `json:"newHostId,omitempty"`
	Room      response.Room `json:"room"`
}

// GameStartedEvent carries the opening game state
type GameStartedEvent struct {
	Type EventType     `json:"type"`
	Room response.Room `json:"room"`
}

// CardFlippedEvent announces a flip and the resulting state
type CardFlippedEvent struct {
	Type     EventType     `json:"type"`
	PlayerID string        `json:"playerId"`
	Card     response.Card `json:"card"`
	IsWild   bool          `json:"isWild"`
	Room     response.Room `json:"room"`
}

// WildCardDrawnEvent announces a wild rule taking effect
type WildCardDrawnEvent struct {
	Type     EventType         `json:"type"`
	PlayerID string            `json:"playerId"`
	Card     response.Card     `json:"card"`
	WildRule response.WildRule `json:"wildRule"`
	Room     response.Room     `json:"room"`
}

// FaceoffDetectedEvent announces matching top cards
type FaceoffDetectedEvent struct {
	Type      EventType             `json:"type"`
	Matches   []response.MatchGroup `json:"matches"`
	FlipperID string                `json:"flipperId"`
	Room      response.Room         `json:"room"`
}

// FaceoffResolvedEvent announces the outcome of a face-off
type FaceoffResolvedEvent struct {
	Type    EventType     `json:"type"`
	LoserID string        `json:"loserId"`
	Winners []string      `json:"winners"`
	Room    response.Room `json:"room"`
}

// GameEndedEvent carries the final scoreboard
type GameEndedEvent struct {
	Type        EventType             `json:"type"`
	Winner      *response.FinalScore  `json:"winner"`
	FinalScores []response.FinalScore `json:"finalScores"`
	Room        response.Room         `json:"room"`
}

// ErrorEvent is sent only to the connection whose command failed
type ErrorEvent struct {
	Type    EventType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// marshalEvent serializes an event for the wire. Event types contain
// nothing unmarshalable, so an error here is a programming bug.
func marshalEvent(event any) []byte {
	data, err := json.Marshal(event)
	if err != nil {
		panic(fmt.Sprintf("ws: unmarshalable event %T: %v", event, err))
	}
	return data
}
