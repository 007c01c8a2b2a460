package storage

import (
	"context"

	"github.com/carriee-liuu/anomia-go/internal/model"
)

// Storage defines the interface for room persistence
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)

	// ListRoomCodes returns the codes of every stored room, for the
	// expiry sweeper
	ListRoomCodes(ctx context.Context) ([]model.RoomCode, error)
}
