package model

import "time"

// PlayerID uniquely identifies a player across reconnections
type PlayerID string

// Player represents a participant in a room.
//
// SessionToken is the opaque secret issued at join time and required to
// reconnect as this player. It is persisted with the room but must never
// appear in any snapshot or event sent to other clients.
type Player struct {
	ID           PlayerID
	Name         string
	IsHost       bool
	SessionToken string

	// Deck is the player's personal stack; the last element is the
	// face-up top card, the only one relevant for matching.
	Deck []Card

	HasFlippedThisTurn bool
	Score              int

	Connected      bool
	JoinedAt       time.Time
	DisconnectedAt time.Time // zero while connected
}

// TopCard returns the player's face-up card, or nil for an empty deck
func (p *Player) TopCard() *Card {
	if len(p.Deck) == 0 {
		return nil
	}
	return &p.Deck[len(p.Deck)-1]
}

// PushCard places a card as the new top of the player's deck
func (p *Player) PushCard(c Card) {
	p.Deck = append(p.Deck, c)
}

// PopTopCard removes and returns the top card, or nil for an empty deck
func (p *Player) PopTopCard() *Card {
	if len(p.Deck) == 0 {
		return nil
	}
	c := p.Deck[len(p.Deck)-1]
	p.Deck = p.Deck[:len(p.Deck)-1]
	return &c
}
