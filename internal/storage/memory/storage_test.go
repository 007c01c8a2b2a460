package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/carriee-liuu/anomia-go/internal/model"
)

type MemoryStorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestMemoryStorageSuite(t *testing.T) {
	suite.Run(t, new(MemoryStorageSuite))
}

func (s *MemoryStorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *MemoryStorageSuite) testRoom(code model.RoomCode) *model.Room {
	return &model.Room{
		Code:      code,
		Status:    model.RoomStatusWaiting,
		CreatedAt: time.Now(),
	}
}

func (s *MemoryStorageSuite) TestSaveAndGetRoom() {
	room := s.testRoom("ABC234")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	got, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(room.Code, got.Code)
	s.Equal(model.RoomStatusWaiting, got.Status)
}

func (s *MemoryStorageSuite) TestGetMissingRoom() {
	_, err := s.storage.GetRoom(s.ctx, "NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *MemoryStorageSuite) TestDeleteRoom() {
	room := s.testRoom("ABC234")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ABC234"))

	_, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *MemoryStorageSuite) TestDeleteMissingRoomIsNoop() {
	s.NoError(s.storage.DeleteRoom(s.ctx, "NOPE22"))
}

func (s *MemoryStorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.testRoom("ABC234")))

	exists, err = s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *MemoryStorageSuite) TestListRoomCodes() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.testRoom("AAAA22")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.testRoom("BBBB33")))

	codes, err := s.storage.ListRoomCodes(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.RoomCode{"AAAA22", "BBBB33"}, codes)
}

func (s *MemoryStorageSuite) TestSaveOverwritesExisting() {
	room := s.testRoom("ABC234")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	updated := s.testRoom("ABC234")
	updated.Status = model.RoomStatusActive
	s.Require().NoError(s.storage.SaveRoom(s.ctx, updated))

	got, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusActive, got.Status)
}
