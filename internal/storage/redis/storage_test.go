package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/carriee-liuu/anomia-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) testRoom(code model.RoomCode) *model.Room {
	return &model.Room{
		Code:   code,
		Status: model.RoomStatusWaiting,
		Players: []model.Player{
			{ID: "player-1", Name: "Alice", IsHost: true, Connected: true},
		},
		CreatedAt: time.Now(),
	}
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := s.testRoom("ABC234")

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(room.Code, retrieved.Code)
	s.Equal(room.Status, retrieved.Status)
	s.Require().Len(retrieved.Players, 1)
	s.Equal("Alice", retrieved.Players[0].Name)
	s.True(retrieved.Players[0].IsHost)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, s.testRoom("ABC234"))

	err := s.storage.DeleteRoom(s.ctx, "ABC234")
	s.Require().NoError(err)

	_, err = s.storage.GetRoom(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)

	_ = s.storage.SaveRoom(s.ctx, s.testRoom("ABC234"))

	exists, err = s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestRoomTTLApplied() {
	_ = s.storage.SaveRoom(s.ctx, s.testRoom("ABC234"))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestListRoomCodes() {
	_ = s.storage.SaveRoom(s.ctx, s.testRoom("AAAA22"))
	_ = s.storage.SaveRoom(s.ctx, s.testRoom("BBBB33"))

	codes, err := s.storage.ListRoomCodes(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.RoomCode{"AAAA22", "BBBB33"}, codes)
}

func (s *StorageSuite) TestListRoomCodesDropsExpiredEntries() {
	_ = s.storage.SaveRoom(s.ctx, s.testRoom("AAAA22"))

	s.mini.FastForward(2 * time.Hour)

	codes, err := s.storage.ListRoomCodes(s.ctx)
	s.Require().NoError(err)
	s.Empty(codes)
}

func (s *StorageSuite) TestRoomStatePreservedAcrossRoundtrip() {
	room := s.testRoom("ABC234")
	room.Status = model.RoomStatusFaceoff
	room.CurrentPlayerIndex = 1
	room.DrawPile = []model.Card{
		{ID: "c1", Shape: model.ShapeCircle, Category: "Dog Breeds"},
	}
	room.CurrentWildCard = &model.WildRule{
		CardID: "w1",
		Shapes: [2]model.Shape{model.ShapeCircle, model.ShapeStar},
	}
	room.CurrentMatches = []model.MatchGroup{
		{Shape: model.ShapeCircle, Players: []model.PlayerID{"player-1", "player-2"}},
	}
	room.FaceoffFlipper = "player-2"

	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusFaceoff, retrieved.Status)
	s.Equal(1, retrieved.CurrentPlayerIndex)
	s.Require().NotNil(retrieved.CurrentWildCard)
	s.Equal(model.CardID("w1"), retrieved.CurrentWildCard.CardID)
	s.Require().Len(retrieved.CurrentMatches, 1)
	s.Equal(model.PlayerID("player-2"), retrieved.FaceoffFlipper)
}
