package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/carriee-liuu/anomia-go/internal/dependencies/mocks"
	"github.com/carriee-liuu/anomia-go/internal/model"
)

type SessionSuite struct {
	suite.Suite
	service *Service
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.service = New(mocks.NewMockRandom())
}

func (s *SessionSuite) TestIssueTokenCarriesPrefix() {
	token := s.service.IssueToken()
	s.True(strings.HasPrefix(token, TokenPrefix))
}

func (s *SessionSuite) TestIssueTokenUnique() {
	s.NotEqual(s.service.IssueToken(), s.service.IssueToken())
}

func (s *SessionSuite) TestAuthenticateMatchesHolder() {
	room := &model.Room{
		Players: []model.Player{
			{ID: "p1", Name: "Alice", SessionToken: "st_aaa"},
			{ID: "p2", Name: "Bob", SessionToken: "st_bbb"},
		},
	}

	player, err := s.service.Authenticate(room, "st_bbb")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p2"), player.ID)
}

func (s *SessionSuite) TestAuthenticateRejectsUnknownToken() {
	room := &model.Room{
		Players: []model.Player{
			{ID: "p1", SessionToken: "st_aaa"},
		},
	}

	_, err := s.service.Authenticate(room, "st_zzz")
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *SessionSuite) TestAuthenticateRejectsEmptyToken() {
	room := &model.Room{
		Players: []model.Player{
			{ID: "p1", SessionToken: ""},
		},
	}

	// An empty token must never match a player, even one whose stored
	// token is itself empty.
	_, err := s.service.Authenticate(room, "")
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *SessionSuite) TestAuthenticateReturnsMutablePlayer() {
	room := &model.Room{
		Players: []model.Player{
			{ID: "p1", SessionToken: "st_aaa", Connected: false},
		},
	}

	player, err := s.service.Authenticate(room, "st_aaa")
	s.Require().NoError(err)

	player.Connected = true
	s.True(room.Players[0].Connected)
}
