package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carriee-liuu/anomia-go/internal/api/apierr"
	"github.com/carriee-liuu/anomia-go/internal/api/response"
	"github.com/carriee-liuu/anomia-go/internal/model"
	"github.com/carriee-liuu/anomia-go/internal/services/room"
)

// GameHandler dispatches parsed commands to the room controller and
// turns the results into events. Rejected commands produce an error
// event for the sender only; nothing is broadcast.
type GameHandler struct {
	rooms      *room.Controller
	hubManager *HubManager
	logger     *slog.Logger

	// disconnectGrace is how long a dropped player's seat is held for a
	// token reconnect before the leave becomes permanent
	disconnectGrace time.Duration
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(
	rooms *room.Controller,
	hubManager *HubManager,
	disconnectGrace time.Duration,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		rooms:           rooms,
		hubManager:      hubManager,
		disconnectGrace: disconnectGrace,
		logger:          logger.With(slog.String("component", "game-handler")),
	}
}

var _ Handler = (*GameHandler)(nil)

// HandleCommand processes one inbound frame from a client
func (g *GameHandler) HandleCommand(ctx context.Context, hub *Hub, client *Client, data []byte) {
	cmd, err := ParseCommand(data)
	if err != nil {
		g.sendError(hub, client, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	switch c := cmd.(type) {
	case JoinRoomCommand:
		g.handleJoin(ctx, hub, client, c)
	case StartGameCommand:
		g.handleStart(ctx, hub, client)
	case FlipCardCommand:
		g.handleFlip(ctx, hub, client)
	case SubmitAnswerCommand:
		// Answers are shouted out of band; resolution is trust-based
		// via resolveFaceoff, so there is nothing to do here
	case ResolveFaceoffCommand:
		g.handleResolve(ctx, hub, client, c)
	case LeaveRoomCommand:
		g.handleLeave(ctx, hub, client)
	}
}

// HandleDisconnect marks the player disconnected and schedules the
// permanent leave for after the grace period
func (g *GameHandler) HandleDisconnect(ctx context.Context, hub *Hub, client *Client) {
	if client.playerID == "" {
		return
	}
	code := hub.RoomCode()
	playerID := client.playerID

	updated, err := g.rooms.Disconnect(ctx, code, playerID)
	if err != nil {
		return
	}

	// Tell the survivors; the snapshot carries any turn repair
	hub.Broadcast(PlayerDisconnectedEvent{
		Type:     EventPlayerDisconnected,
		PlayerID: string(playerID),
		Room:     response.RoomFromModel(updated),
	})

	if g.disconnectGrace <= 0 {
		g.finalizeLeave(code, playerID)
		return
	}
	time.AfterFunc(g.disconnectGrace, func() {
		g.finalizeLeave(code, playerID)
	})
}

// finalizeLeave runs after the grace period; a player who reconnected in
// time is left alone
func (g *GameHandler) finalizeLeave(code model.RoomCode, playerID model.PlayerID) {
	result, err := g.rooms.FinalizeDisconnect(context.Background(), code, playerID)
	if err != nil {
		g.logger.Error("failed to finalize disconnect",
			slog.String("room", string(code)),
			slog.String("player_id", string(playerID)),
			slog.Any("error", err))
		return
	}
	if result == nil {
		return
	}
	g.broadcastLeave(code, result)
}

func (g *GameHandler) broadcastLeave(code model.RoomCode, result *room.LeaveResult) {
	if result.RoomDeleted {
		g.hubManager.RemoveHub(code)
		return
	}
	hub := g.hubManager.GetHub(code)
	if hub == nil {
		return
	}
	hub.Broadcast(PlayerLeftEvent{
		Type:      EventPlayerLeft,
		PlayerID:  string(result.PlayerID),
		Name:      result.PlayerName,
		NewHostID: string(result.NewHostID),
		Room:      response.RoomFromModel(result.Room),
	})
}

func (g *GameHandler) handleJoin(ctx context.Context, hub *Hub, client *Client, cmd JoinRoomCommand) {
	result, err := g.rooms.JoinRoom(ctx, hub.RoomCode(), cmd.Name, cmd.SessionToken)
	if err != nil {
		g.sendError(hub, client, err)
		return
	}
	client.playerID = result.Player.ID

	roomView := response.RoomFromModel(result.Room)
	playerView := response.PlayerFromModel(&result.Player)

	hub.SendTo(client, RoomJoinedEvent{
		Type:         EventRoomJoined,
		Room:         roomView,
		Player:       playerView,
		SessionToken: result.SessionToken,
		Reconnected:  result.Reconnected,
	})
	if !result.Reconnected {
		hub.Broadcast(PlayerJoinedEvent{
			Type:   EventPlayerJoined,
			Player: playerView,
			Room:   roomView,
		})
	}
}

func (g *GameHandler) handleStart(ctx context.Context, hub *Hub, client *Client) {
	if client.playerID == "" {
		g.sendError(hub, client, model.ErrPlayerNotFound)
		return
	}
	started, err := g.rooms.StartGame(ctx, hub.RoomCode(), client.playerID)
	if err != nil {
		g.sendError(hub, client, err)
		return
	}
	hub.Broadcast(GameStartedEvent{
		Type: EventGameStarted,
		Room: response.RoomFromModel(started),
	})
}

func (g *GameHandler) handleFlip(ctx context.Context, hub *Hub, client *Client) {
	if client.playerID == "" {
		g.sendError(hub, client, model.ErrPlayerNotFound)
		return
	}
	result, err := g.rooms.FlipCard(ctx, hub.RoomCode(), client.playerID)
	if err != nil {
		g.sendError(hub, client, err)
		return
	}

	roomView := response.RoomFromModel(result.Room)

	cardView := response.CardFromModel(&result.Card)
	hub.Broadcast(CardFlippedEvent{
		Type:     EventCardFlipped,
		PlayerID: string(client.playerID),
		Card:     *cardView,
		IsWild:   result.Wild,
		Room:     roomView,
	})
	if result.Wild {
		hub.Broadcast(WildCardDrawnEvent{
			Type:     EventWildCardDrawn,
			PlayerID: string(client.playerID),
			Card:     *cardView,
			WildRule: *response.WildRuleFromModel(result.Room.CurrentWildCard),
			Room:     roomView,
		})
	}
	if result.FaceoffDetected {
		hub.Broadcast(FaceoffDetectedEvent{
			Type:      EventFaceoffDetected,
			Matches:   roomView.CurrentMatches,
			FlipperID: string(client.playerID),
			Room:      roomView,
		})
	}
	if result.GameEnded {
		g.broadcastGameEnded(hub, result.Room)
	}
}

func (g *GameHandler) handleResolve(ctx context.Context, hub *Hub, client *Client, cmd ResolveFaceoffCommand) {
	if client.playerID == "" {
		g.sendError(hub, client, model.ErrPlayerNotFound)
		return
	}
	result, err := g.rooms.ResolveFaceoff(ctx, hub.RoomCode(), model.PlayerID(cmd.LoserID))
	if err != nil {
		g.sendError(hub, client, err)
		return
	}

	winners := make([]string, len(result.Winners))
	for i, id := range result.Winners {
		winners[i] = string(id)
	}
	hub.Broadcast(FaceoffResolvedEvent{
		Type:    EventFaceoffResolved,
		LoserID: string(result.LoserID),
		Winners: winners,
		Room:    response.RoomFromModel(result.Room),
	})
	if result.GameEnded {
		g.broadcastGameEnded(hub, result.Room)
	}
}

func (g *GameHandler) handleLeave(ctx context.Context, hub *Hub, client *Client) {
	if client.playerID == "" {
		return
	}
	result, err := g.rooms.LeaveRoom(ctx, hub.RoomCode(), client.playerID)
	if err != nil {
		g.sendError(hub, client, err)
		return
	}
	client.playerID = ""
	g.broadcastLeave(hub.RoomCode(), result)
}

func (g *GameHandler) broadcastGameEnded(hub *Hub, r *model.Room) {
	view := response.RoomFromModel(r)
	hub.Broadcast(GameEndedEvent{
		Type:        EventGameEnded,
		Winner:      view.Winner,
		FinalScores: view.FinalScores,
		Room:        view,
	})
}

func (g *GameHandler) sendError(hub *Hub, client *Client, err error) {
	apiErr := apierr.FromError(err)
	hub.SendTo(client, ErrorEvent{
		Type:    EventError,
		Code:    apiErr.Code,
		Message: apiErr.Message,
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Room codes are the only admission control; origins are not checked
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a websocket connection scoped to
// the given room. The room must already exist.
func ServeWS(
	w http.ResponseWriter,
	r *http.Request,
	roomCode model.RoomCode,
	handler *GameHandler,
	logger *slog.Logger,
) {
	if _, err := handler.rooms.GetRoom(r.Context(), roomCode); err != nil {
		apierr.WriteError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	hub := handler.hubManager.GetOrCreateHub(roomCode, handler)
	client := newClient(hub, conn, logger)
	hub.Register(client)

	go client.writePump()
	go client.readPump()
}
