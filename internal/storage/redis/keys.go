package redis

import (
	"fmt"

	"github.com/carriee-liuu/anomia-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "anomia"

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// roomIndexKey returns the Redis key for the SET of all room codes
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}
