// Package session issues and verifies the per-player session tokens used
// to reclaim a seat after a dropped connection.
package session

import (
	"crypto/subtle"

	"github.com/carriee-liuu/anomia-go/internal/dependencies/random"
	"github.com/carriee-liuu/anomia-go/internal/model"
)

// TokenPrefix marks session tokens so they are recognisable in logs
// without revealing the secret part
const TokenPrefix = "st_"

// Service handles session token issuance and verification
type Service struct {
	random random.Random
}

// New creates a new session Service
func New(random random.Random) *Service {
	return &Service{
		random: random,
	}
}

// IssueToken mints a fresh session token for a newly joined player
func (s *Service) IssueToken() string {
	return s.random.Token(TokenPrefix)
}

// Authenticate finds the player in the room holding the given token.
// Every player's token is compared in constant time regardless of where
// a match occurs, so timing reveals nothing about token contents.
// Returns model.ErrInvalidToken when no player holds the token.
func (s *Service) Authenticate(room *model.Room, token string) (*model.Player, error) {
	if token == "" {
		return nil, model.ErrInvalidToken
	}

	var matched *model.Player
	for i := range room.Players {
		p := &room.Players[i]
		if subtle.ConstantTimeCompare([]byte(p.SessionToken), []byte(token)) == 1 {
			matched = p
		}
	}
	if matched == nil {
		return nil, model.ErrInvalidToken
	}
	return matched, nil
}
