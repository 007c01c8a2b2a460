// Package response defines the JSON views sent to clients over both the
// HTTP API and the WebSocket event channel.
//
// View types deliberately re-declare only the fields clients may see:
// session tokens and full deck contents never leave the server.
package response

import (
	"github.com/carriee-liuu/anomia-go/internal/model"
)

// Card represents a card in API responses
type Card struct {
	ID         string   `json:"id"`
	Shape      string   `json:"shape,omitempty"`
	Category   string   `json:"category,omitempty"`
	IsWild     bool     `json:"isWild,omitempty"`
	WildShapes []string `json:"wildShapes,omitempty"`
}

// CardFromModel converts a model.Card to a response Card
func CardFromModel(c *model.Card) *Card {
	if c == nil {
		return nil
	}
	card := &Card{
		ID:       string(c.ID),
		Shape:    string(c.Shape),
		Category: c.Category,
		IsWild:   c.IsWild,
	}
	if c.IsWild {
		card.Shape = ""
		card.WildShapes = []string{string(c.WildShapes[0]), string(c.WildShapes[1])}
	}
	return card
}

// Player represents a player in API responses. The session token is
// intentionally absent; it travels only inside the roomJoined event sent
// to the player it belongs to.
type Player struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	IsHost             bool   `json:"isHost"`
	Score              int    `json:"score"`
	Connected          bool   `json:"connected"`
	HasFlippedThisTurn bool   `json:"hasFlippedThisTurn"`
	DeckSize           int    `json:"deckSize"`
	TopCard            *Card  `json:"topCard"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:                 string(p.ID),
		Name:               p.Name,
		IsHost:             p.IsHost,
		Score:              p.Score,
		Connected:          p.Connected,
		HasFlippedThisTurn: p.HasFlippedThisTurn,
		DeckSize:           len(p.Deck),
		TopCard:            CardFromModel(p.TopCard()),
	}
}

// WildRule represents the active wild-card effect
type WildRule struct {
	CardID string   `json:"cardId"`
	Shapes []string `json:"shapes"`
}

// WildRuleFromModel converts a model.WildRule
func WildRuleFromModel(r *model.WildRule) *WildRule {
	if r == nil {
		return nil
	}
	return &WildRule{
		CardID: string(r.CardID),
		Shapes: []string{string(r.Shapes[0]), string(r.Shapes[1])},
	}
}

// MatchGroup represents a detected face-off group
type MatchGroup struct {
	Shape   string   `json:"shape"`
	Players []string `json:"players"`
}

// MatchGroupFromModel converts a model.MatchGroup
func MatchGroupFromModel(g model.MatchGroup) MatchGroup {
	players := make([]string, len(g.Players))
	for i, id := range g.Players {
		players[i] = string(id)
	}
	return MatchGroup{
		Shape:   string(g.Shape),
		Players: players,
	}
}

// FinalScore represents one entry of the end-of-game scoreboard
type FinalScore struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// FinalScoreFromModel converts a model.FinalScore
func FinalScoreFromModel(f model.FinalScore) FinalScore {
	return FinalScore{
		PlayerID: string(f.PlayerID),
		Name:     f.Name,
		Score:    f.Score,
	}
}

// Room represents a room snapshot in API responses
type Room struct {
	Code               string       `json:"code"`
	Status             string       `json:"status"`
	Players            []Player     `json:"players"`
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
	DrawPileSize       int          `json:"drawPileSize"`
	DiscardSize        int          `json:"discardSize"`
	CurrentWildCard    *WildRule    `json:"currentWildCard"`
	CurrentMatches     []MatchGroup `json:"currentMatches,omitempty"`
	Winner             *FinalScore  `json:"winner,omitempty"`
	FinalScores        []FinalScore `json:"finalScores,omitempty"`
}

// RoomFromModel converts a model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	players := make([]Player, len(r.Players))
	for i := range r.Players {
		players[i] = PlayerFromModel(&r.Players[i])
	}

	room := Room{
		Code:               string(r.Code),
		Status:             string(r.Status),
		Players:            players,
		CurrentPlayerIndex: r.CurrentPlayerIndex,
		DrawPileSize:       len(r.DrawPile),
		DiscardSize:        len(r.Discard),
		CurrentWildCard:    WildRuleFromModel(r.CurrentWildCard),
	}
	for _, g := range r.CurrentMatches {
		room.CurrentMatches = append(room.CurrentMatches, MatchGroupFromModel(g))
	}
	if r.Winner != nil {
		w := FinalScoreFromModel(*r.Winner)
		room.Winner = &w
	}
	for _, f := range r.FinalScores {
		room.FinalScores = append(room.FinalScores, FinalScoreFromModel(f))
	}
	return room
}

// CreateRoomResponse is the response for POST /api/rooms
type CreateRoomResponse struct {
	Room         Room   `json:"room"`
	Player       Player `json:"player"`
	SessionToken string `json:"sessionToken"`
}

// GetRoomResponse is the response for GET /api/rooms/{code}
type GetRoomResponse struct {
	Room Room `json:"room"`
}

// HealthResponse is the response for GET /api/health
type HealthResponse struct {
	Status string `json:"status"`
}
