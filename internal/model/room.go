package model

import "time"

// RoomCode is the short human-shareable identifier for joining rooms
type RoomCode string

// RoomStatus represents the current phase of a room
type RoomStatus string

const (
	RoomStatusWaiting   RoomStatus = "waiting"   // Lobby, game not started
	RoomStatusActive    RoomStatus = "active"    // Turns in progress
	RoomStatusFaceoff   RoomStatus = "faceoff"   // Matching cards contested
	RoomStatusCompleted RoomStatus = "completed" // Draw pile exhausted
)

// MatchGroup is a set of players whose top cards share a symbol (possibly
// via the active wild rule). Groups always have at least two members.
type MatchGroup struct {
	Shape   Shape
	Players []PlayerID
}

// Contains reports whether the group includes the given player
func (g MatchGroup) Contains(id PlayerID) bool {
	for _, p := range g.Players {
		if p == id {
			return true
		}
	}
	return false
}

// FinalScore is one entry of the end-of-game scoreboard
type FinalScore struct {
	PlayerID PlayerID
	Name     string
	Score    int
}

// Room is the authoritative state of a single game session.
//
// Players are kept in join order; that order drives both turn rotation and
// host succession. CurrentPlayerIndex is meaningful only while Status is
// active or faceoff.
type Room struct {
	Code   RoomCode
	Status RoomStatus

	Players            []Player
	CurrentPlayerIndex int

	DrawPile []Card
	Discard  []Card // cards removed from play by face-off losses

	CurrentWildCard *WildRule
	CurrentMatches  []MatchGroup
	// FaceoffFlipper is the player whose flip triggered CurrentMatches;
	// after resolution the turn advances to the player after them.
	FaceoffFlipper PlayerID

	Winner      *FinalScore
	FinalScores []FinalScore

	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastActivity time.Time
}

// Clone returns a deep copy sharing no mutable state with the receiver.
// The memory storage backend hands out live pointers, so readers that
// outlive the room lock must work on a clone.
func (r *Room) Clone() *Room {
	c := *r

	c.Players = make([]Player, len(r.Players))
	for i, p := range r.Players {
		c.Players[i] = p
		c.Players[i].Deck = append([]Card(nil), p.Deck...)
	}
	c.DrawPile = append([]Card(nil), r.DrawPile...)
	c.Discard = append([]Card(nil), r.Discard...)

	if r.CurrentWildCard != nil {
		rule := *r.CurrentWildCard
		c.CurrentWildCard = &rule
	}
	c.CurrentMatches = make([]MatchGroup, len(r.CurrentMatches))
	for i, g := range r.CurrentMatches {
		c.CurrentMatches[i] = MatchGroup{
			Shape:   g.Shape,
			Players: append([]PlayerID(nil), g.Players...),
		}
	}

	if r.Winner != nil {
		w := *r.Winner
		c.Winner = &w
	}
	c.FinalScores = append([]FinalScore(nil), r.FinalScores...)

	return &c
}

// GetPlayer returns the player with the given ID, or nil if not present
func (r *Room) GetPlayer(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayerIndex returns the join-order index of the given player, or -1
func (r *Room) PlayerIndex(id PlayerID) int {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// Host returns the current host, or nil for an empty room
func (r *Room) Host() *Player {
	for i := range r.Players {
		if r.Players[i].IsHost {
			return &r.Players[i]
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil when the index
// is out of range (empty room or game not started)
func (r *Room) CurrentPlayer() *Player {
	if r.CurrentPlayerIndex < 0 || r.CurrentPlayerIndex >= len(r.Players) {
		return nil
	}
	return &r.Players[r.CurrentPlayerIndex]
}

// ConnectedCount returns how many players currently hold a live connection
func (r *Room) ConnectedCount() int {
	n := 0
	for i := range r.Players {
		if r.Players[i].Connected {
			n++
		}
	}
	return n
}

// NextConnectedIndex returns the index of the first connected player
// strictly after from in rotation order. Returns -1 when no other player
// is connected.
func (r *Room) NextConnectedIndex(from int) int {
	if len(r.Players) == 0 {
		return -1
	}
	for step := 1; step <= len(r.Players); step++ {
		idx := (from + step) % len(r.Players)
		if idx == from {
			break
		}
		if r.Players[idx].Connected {
			return idx
		}
	}
	return -1
}
