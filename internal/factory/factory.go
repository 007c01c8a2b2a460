// Package factory wires the application's components together.
package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/carriee-liuu/anomia-go/internal/dependencies/clock"
	"github.com/carriee-liuu/anomia-go/internal/dependencies/random"
	"github.com/carriee-liuu/anomia-go/internal/services/room"
	"github.com/carriee-liuu/anomia-go/internal/services/session"
	"github.com/carriee-liuu/anomia-go/internal/storage"
	"github.com/carriee-liuu/anomia-go/internal/storage/memory"
	redisstorage "github.com/carriee-liuu/anomia-go/internal/storage/redis"
	"github.com/carriee-liuu/anomia-go/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Sessions       *session.Service
	RoomController *room.Controller
	HubManager     *ws.HubManager
	GameHandler    *ws.GameHandler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RoomConfig holds room behavior settings (optional)
	RoomConfig room.Config
	// DisconnectGrace is how long a dropped connection's seat is held
	// for reconnection before the player is removed
	DisconnectGrace time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	roomCfg := cfg.RoomConfig
	if roomCfg.MinPlayers == 0 && roomCfg.MaxPlayers == 0 && roomCfg.RoomTTL == 0 {
		roomCfg = room.DefaultConfig()
	}

	grace := cfg.DisconnectGrace
	if grace == 0 {
		grace = 2 * time.Minute
	}

	return newWithDependencies(store, clk, rnd, roomCfg, grace, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	roomCfg room.Config,
	disconnectGrace time.Duration,
	logger *slog.Logger,
) *App {
	sessions := session.New(rnd)
	roomController := room.NewController(store, sessions, clk, rnd, roomCfg)
	hubManager := ws.NewHubManager(logger)
	gameHandler := ws.NewGameHandler(roomController, hubManager, disconnectGrace, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Sessions:       sessions,
		RoomController: roomController,
		HubManager:     hubManager,
		GameHandler:    gameHandler,
	}
}
