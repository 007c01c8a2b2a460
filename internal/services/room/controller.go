// Package room implements the authoritative per-room game state machine:
// creation and joining, turn rotation, face-off resolution, scoring,
// host migration, and room expiry.
package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carriee-liuu/anomia-go/internal/deck"
	"github.com/carriee-liuu/anomia-go/internal/dependencies/clock"
	"github.com/carriee-liuu/anomia-go/internal/dependencies/random"
	"github.com/carriee-liuu/anomia-go/internal/match"
	"github.com/carriee-liuu/anomia-go/internal/model"
	"github.com/carriee-liuu/anomia-go/internal/services/session"
	"github.com/carriee-liuu/anomia-go/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoids
	// confusable chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Config holds room behavior settings
type Config struct {
	// MinPlayers is the minimum players to start a game; turn
	// progression also pauses when fewer remain connected mid-game
	MinPlayers int
	// MaxPlayers caps how many players may join a room
	MaxPlayers int
	// RoomTTL is how long a room with no connected players survives
	// before the expiry sweep evicts it
	RoomTTL time.Duration
}

// DefaultConfig returns default room configuration
func DefaultConfig() Config {
	return Config{
		MinPlayers: 2,
		MaxPlayers: 8,
		RoomTTL:    2 * time.Hour,
	}
}

// Controller manages the room state machine. All transitions for one room
// are serialized under a per-room mutex, so each operation is atomic with
// respect to every other operation on the same room; different rooms
// proceed fully in parallel.
type Controller struct {
	storage  storage.Storage
	sessions *session.Service
	clock    clock.Clock
	random   random.Random
	cfg      Config

	mu    sync.Mutex
	locks map[model.RoomCode]*sync.Mutex
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	sessions *session.Service,
	clock clock.Clock,
	random random.Random,
	cfg Config,
) *Controller {
	if cfg.MinPlayers == 0 {
		cfg.MinPlayers = DefaultConfig().MinPlayers
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = DefaultConfig().MaxPlayers
	}
	if cfg.RoomTTL == 0 {
		cfg.RoomTTL = DefaultConfig().RoomTTL
	}
	return &Controller{
		storage:  storage,
		sessions: sessions,
		clock:    clock,
		random:   random,
		cfg:      cfg,
		locks:    make(map[model.RoomCode]*sync.Mutex),
	}
}

// JoinResult reports the outcome of CreateRoom or JoinRoom
type JoinResult struct {
	Room         *model.Room
	Player       model.Player
	SessionToken string
	// Reconnected is true when an existing player reclaimed their seat
	// via session token rather than a new player being created
	Reconnected bool
}

// FlipResult reports the outcome of FlipCard
type FlipResult struct {
	Room *model.Room
	Card model.Card
	// Wild is true when the drawn card activated a wild rule instead of
	// entering match detection
	Wild            bool
	FaceoffDetected bool
	GameEnded       bool
}

// ResolveResult reports the outcome of ResolveFaceoff
type ResolveResult struct {
	Room          *model.Room
	LoserID       model.PlayerID
	DiscardedCard model.Card
	Winners       []model.PlayerID
	// FaceoffCleared is false when further match groups remain pending
	FaceoffCleared bool
	GameEnded      bool
}

// LeaveResult reports the outcome of a player's permanent departure
type LeaveResult struct {
	// Room is nil when the departure emptied and deleted the room
	Room        *model.Room
	PlayerID    model.PlayerID
	PlayerName  string
	NewHostID   model.PlayerID // zero when the host did not change
	RoomDeleted bool
}

// roomLock returns the mutex serializing transitions for a room code
func (c *Controller) roomLock(code model.RoomCode) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[code]
	if !ok {
		l = &sync.Mutex{}
		c.locks[code] = l
	}
	return l
}

func (c *Controller) dropLock(code model.RoomCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, code)
}

// CreateRoom creates a new room in the waiting state with hostName as its
// host, issuing the host's session token
func (c *Controller) CreateRoom(ctx context.Context, hostName string) (*JoinResult, error) {
	now := c.clock.Now()

	// Generate unique room code
	var code model.RoomCode
	for {
		code = model.RoomCode(c.random.String(RoomCodeLength, RoomCodeAlphabet))
		exists, err := c.storage.RoomExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	token := c.sessions.IssueToken()
	host := model.Player{
		ID:           model.PlayerID(uuid.NewString()),
		Name:         hostName,
		IsHost:       true,
		SessionToken: token,
		Connected:    true,
		JoinedAt:     now,
	}

	room := &model.Room{
		Code:         code,
		Status:       model.RoomStatusWaiting,
		Players:      []model.Player{host},
		CreatedAt:    now,
		UpdatedAt:    now,
		LastActivity: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	return &JoinResult{
		Room:         room,
		Player:       host,
		SessionToken: token,
	}, nil
}

// GetRoom retrieves a snapshot of a room by code. The copy is taken under
// the room lock so concurrent transitions never show through to readers
// serializing it outside the lock.
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return room.Clone(), nil
}

// JoinRoom adds a player to a room, or reconnects an existing player when
// the supplied session token matches one. Reconnection is allowed in any
// status; brand-new players may only join while the room is waiting.
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, name string, token string) (*JoinResult, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()

	if token != "" {
		if player, err := c.sessions.Authenticate(room, token); err == nil {
			player.Connected = true
			player.DisconnectedAt = time.Time{}
			c.touch(room, now)
			if err := c.storage.SaveRoom(ctx, room); err != nil {
				return nil, err
			}
			return &JoinResult{
				Room:         room,
				Player:       *player,
				SessionToken: player.SessionToken,
				Reconnected:  true,
			}, nil
		}
		// An unrecognised token falls through to a normal join attempt
	}

	if room.Status != model.RoomStatusWaiting {
		return nil, model.ErrGameAlreadyStarted
	}
	if len(room.Players) >= c.cfg.MaxPlayers {
		return nil, model.ErrRoomFull
	}

	newToken := c.sessions.IssueToken()
	player := model.Player{
		ID:           model.PlayerID(uuid.NewString()),
		Name:         name,
		SessionToken: newToken,
		Connected:    true,
		JoinedAt:     now,
	}
	room.Players = append(room.Players, player)
	c.touch(room, now)

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	return &JoinResult{
		Room:         room,
		Player:       player,
		SessionToken: newToken,
	}, nil
}

// StartGame begins the game: host only, waiting rooms only, and at least
// MinPlayers players. The draw pile is built and shuffled; player decks
// start empty and fill as cards are flipped.
func (c *Controller) StartGame(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Room, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	player := room.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	if !player.IsHost {
		return nil, model.ErrNotHost
	}
	if room.Status != model.RoomStatusWaiting {
		return nil, model.ErrGameAlreadyStarted
	}
	if len(room.Players) < c.cfg.MinPlayers {
		return nil, model.ErrNotEnoughPlayers
	}

	room.DrawPile = deck.BuildPile(len(room.Players), c.random)
	room.Status = model.RoomStatusActive
	room.CurrentPlayerIndex = 0
	for i := range room.Players {
		room.Players[i].HasFlippedThisTurn = false
		room.Players[i].Score = 0
		room.Players[i].Deck = nil
	}
	c.touch(room, c.clock.Now())

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// FlipCard draws the top card of the shared pile onto playerID's deck.
// A wild card replaces the active wild rule and advances the turn; a
// regular card runs match detection, either opening a face-off (turn
// held) or advancing the turn to the next connected player.
func (c *Controller) FlipCard(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*FlipResult, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	switch room.Status {
	case model.RoomStatusWaiting:
		return nil, model.ErrGameNotStarted
	case model.RoomStatusFaceoff:
		// The turn pointer still sits on the flipper during a face-off
		if cur := room.CurrentPlayer(); cur != nil && cur.ID == playerID {
			return nil, model.ErrAlreadyFlipped
		}
		return nil, model.ErrFaceoffInProgress
	case model.RoomStatusCompleted:
		return nil, model.ErrGameCompleted
	}

	if room.ConnectedCount() < c.cfg.MinPlayers {
		return nil, model.ErrTurnBlocked
	}

	current := room.CurrentPlayer()
	if current == nil || current.ID != playerID {
		return nil, model.ErrNotYourTurn
	}
	if current.HasFlippedThisTurn {
		return nil, model.ErrAlreadyFlipped
	}

	card, remaining, err := deck.Draw(room.DrawPile)
	if err != nil {
		// Exhaustion is a completion trigger, not a player-facing error
		c.completeGame(room)
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return nil, err
		}
		return &FlipResult{Room: room, GameEnded: true}, nil
	}
	room.DrawPile = remaining
	current.PushCard(card)
	current.HasFlippedThisTurn = true

	result := &FlipResult{Room: room, Card: card}

	if card.IsWild {
		// A wild card is a rule change, not a matchable symbol
		room.CurrentWildCard = &model.WildRule{
			CardID: card.ID,
			Shapes: card.WildShapes,
		}
		result.Wild = true
		c.advanceTurn(room, room.CurrentPlayerIndex)
	} else {
		groups := c.detectMatches(room)
		if len(groups) > 0 {
			room.Status = model.RoomStatusFaceoff
			room.CurrentMatches = groups
			room.FaceoffFlipper = playerID
			result.FaceoffDetected = true
		} else {
			c.advanceTurn(room, room.CurrentPlayerIndex)
		}
	}

	if c.checkCompletion(room) {
		result.GameEnded = true
	}
	c.touch(room, c.clock.Now())

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return result, nil
}

// ResolveFaceoff settles the active face-off by naming its loser. The
// report is trust-based; the server does not verify who answered first.
// The loser's top card is discarded, every other matched player scores,
// and the turn passes to the player after the one whose flip opened the
// face-off, unless further match groups remain pending.
func (c *Controller) ResolveFaceoff(ctx context.Context, code model.RoomCode, loserID model.PlayerID) (*ResolveResult, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.Status != model.RoomStatusFaceoff || len(room.CurrentMatches) == 0 {
		return nil, model.ErrNoActiveFaceoff
	}

	active := room.CurrentMatches[0]
	if !active.Contains(loserID) {
		return nil, model.ErrUnknownLoser
	}

	loser := room.GetPlayer(loserID)
	if loser == nil {
		return nil, model.ErrUnknownLoser
	}

	// The wild rule is spent if it is what bridged this group
	wildInvolved := false
	if room.CurrentWildCard != nil {
		for _, id := range active.Players {
			if p := room.GetPlayer(id); p != nil {
				if top := p.TopCard(); top != nil && top.Shape != active.Shape {
					wildInvolved = true
				}
			}
		}
	}

	discarded := loser.PopTopCard()
	if discarded != nil {
		room.Discard = append(room.Discard, *discarded)
	}

	result := &ResolveResult{
		Room:    room,
		LoserID: loserID,
	}
	if discarded != nil {
		result.DiscardedCard = *discarded
	}
	for _, id := range active.Players {
		if id == loserID {
			continue
		}
		if p := room.GetPlayer(id); p != nil {
			p.Score++
			result.Winners = append(result.Winners, id)
		}
	}

	if wildInvolved {
		room.CurrentWildCard = nil
	}

	// Matches are always recomputed from the current top cards rather
	// than mutated in place; resolving one group may leave others (or
	// the loser's newly exposed top card may form a fresh one)
	room.CurrentMatches = c.detectMatches(room)
	if len(room.CurrentMatches) == 0 {
		room.Status = model.RoomStatusActive
		result.FaceoffCleared = true
		flipperIdx := room.PlayerIndex(room.FaceoffFlipper)
		room.FaceoffFlipper = ""
		c.advanceTurn(room, flipperIdx)
		if c.checkCompletion(room) {
			result.GameEnded = true
		}
	}
	c.touch(room, c.clock.Now())

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return result, nil
}

// Disconnect marks a player's connection as dropped without removing
// them, so a session token can reclaim the seat. The caller is expected
// to schedule FinalizeDisconnect after the grace period.
func (c *Controller) Disconnect(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Room, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	player := room.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}

	player.Connected = false
	player.DisconnectedAt = c.clock.Now()

	// Never leave the turn pointing at a disconnected player
	if room.Status == model.RoomStatusActive {
		if cur := room.CurrentPlayer(); cur != nil && !cur.Connected {
			c.advanceTurn(room, room.CurrentPlayerIndex)
		}
	}
	room.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// FinalizeDisconnect removes a player whose grace period elapsed without
// a reconnection. Returns nil with no error when the player reconnected
// in the meantime.
func (c *Controller) FinalizeDisconnect(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*LeaveResult, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil, nil
		}
		return nil, err
	}

	player := room.GetPlayer(playerID)
	if player == nil || player.Connected {
		return nil, nil
	}

	return c.removePlayer(ctx, room, playerID)
}

// LeaveRoom removes a player immediately, skipping the disconnect grace
// period. Used for explicit leaveRoom commands.
func (c *Controller) LeaveRoom(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*LeaveResult, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.GetPlayer(playerID) == nil {
		return nil, model.ErrPlayerNotFound
	}

	return c.removePlayer(ctx, room, playerID)
}

// SweepExpired deletes rooms that have had no connected players for
// longer than the room TTL. Returns how many rooms were evicted.
func (c *Controller) SweepExpired(ctx context.Context) (int, error) {
	codes, err := c.storage.ListRoomCodes(ctx)
	if err != nil {
		return 0, err
	}

	evicted := 0
	for _, code := range codes {
		lock := c.roomLock(code)
		lock.Lock()
		room, err := c.storage.GetRoom(ctx, code)
		if err != nil {
			lock.Unlock()
			if errors.Is(err, model.ErrRoomNotFound) {
				continue
			}
			return evicted, err
		}
		if room.ConnectedCount() == 0 && c.clock.Since(room.LastActivity) > c.cfg.RoomTTL {
			if err := c.storage.DeleteRoom(ctx, code); err != nil {
				lock.Unlock()
				return evicted, err
			}
			evicted++
			lock.Unlock()
			c.dropLock(code)
			continue
		}
		lock.Unlock()
	}
	return evicted, nil
}

// removePlayer performs a permanent departure: deck cards are discarded,
// the host role migrates, the turn is repaired, and an emptied room is
// deleted. Caller must hold the room lock.
func (c *Controller) removePlayer(ctx context.Context, room *model.Room, playerID model.PlayerID) (*LeaveResult, error) {
	idx := room.PlayerIndex(playerID)
	if idx < 0 {
		return nil, model.ErrPlayerNotFound
	}
	leaving := room.Players[idx]

	// Cards leave play with their owner; nothing returns to the pile
	room.Discard = append(room.Discard, leaving.Deck...)
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)

	result := &LeaveResult{
		PlayerID:   leaving.ID,
		PlayerName: leaving.Name,
	}

	if len(room.Players) == 0 {
		if err := c.storage.DeleteRoom(ctx, room.Code); err != nil {
			return nil, err
		}
		c.dropLock(room.Code)
		result.RoomDeleted = true
		return result, nil
	}
	result.Room = room

	if leaving.IsHost {
		// Next-joined connected player becomes host; fall back to the
		// next-joined player outright when everyone is disconnected
		newHost := -1
		for i := range room.Players {
			if room.Players[i].Connected {
				newHost = i
				break
			}
		}
		if newHost < 0 {
			newHost = 0
		}
		room.Players[newHost].IsHost = true
		result.NewHostID = room.Players[newHost].ID
	}

	// Turn repair
	if idx < room.CurrentPlayerIndex {
		room.CurrentPlayerIndex--
	} else if idx == room.CurrentPlayerIndex {
		if room.CurrentPlayerIndex >= len(room.Players) {
			room.CurrentPlayerIndex = 0
		}
		if cur := room.CurrentPlayer(); cur != nil {
			cur.HasFlippedThisTurn = false
			if !cur.Connected {
				c.advanceTurn(room, room.CurrentPlayerIndex)
			}
		}
	}

	// A departed player may dissolve a pending face-off
	if room.Status == model.RoomStatusFaceoff {
		room.CurrentMatches = c.detectMatches(room)
		if len(room.CurrentMatches) == 0 {
			room.Status = model.RoomStatusActive
			flipperIdx := room.PlayerIndex(room.FaceoffFlipper)
			room.FaceoffFlipper = ""
			c.advanceTurn(room, flipperIdx)
		}
	}

	c.checkCompletion(room)
	c.touch(room, c.clock.Now())

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return result, nil
}

// detectMatches snapshots connected players' top cards and runs match
// detection under the active wild rule
func (c *Controller) detectMatches(room *model.Room) []model.MatchGroup {
	tops := make(match.TopCards, len(room.Players))
	for i := range room.Players {
		p := &room.Players[i]
		if !p.Connected {
			continue
		}
		if top := p.TopCard(); top != nil {
			tops[p.ID] = *top
		}
	}
	return match.Detect(tops, room.CurrentWildCard)
}

// advanceTurn moves the turn to the first connected player after the
// given index, resetting their flip flag. With no other connected player
// the turn stays put; progression is blocked at the next FlipCard.
func (c *Controller) advanceTurn(room *model.Room, from int) {
	next := room.NextConnectedIndex(from)
	if next < 0 {
		return
	}
	room.CurrentPlayerIndex = next
	room.Players[next].HasFlippedThisTurn = false
}

// checkCompletion applies the win condition: an exhausted pile with no
// face-off pending ends the game. Final scores sort descending with ties
// broken by join order; the winner is the top scorer.
func (c *Controller) checkCompletion(room *model.Room) bool {
	if room.Status != model.RoomStatusActive {
		return false
	}
	if len(room.DrawPile) > 0 || len(room.CurrentMatches) > 0 {
		return false
	}
	c.completeGame(room)
	return true
}

func (c *Controller) completeGame(room *model.Room) {
	room.Status = model.RoomStatusCompleted
	room.CurrentMatches = nil
	room.CurrentWildCard = nil

	scores := make([]model.FinalScore, 0, len(room.Players))
	for _, p := range room.Players {
		scores = append(scores, model.FinalScore{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
		})
	}
	// Stable sort keeps join order for equal scores
	for i := 1; i < len(scores); i++ {
		for j := i; j > 0 && scores[j].Score > scores[j-1].Score; j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
	room.FinalScores = scores
	if len(scores) > 0 {
		winner := scores[0]
		room.Winner = &winner
	}
}

func (c *Controller) touch(room *model.Room, now time.Time) {
	room.UpdatedAt = now
	room.LastActivity = now
}
