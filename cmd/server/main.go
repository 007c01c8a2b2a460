package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/carriee-liuu/anomia-go/internal/api"
	"github.com/carriee-liuu/anomia-go/internal/factory"
	"github.com/carriee-liuu/anomia-go/internal/services/room"
	redisstorage "github.com/carriee-liuu/anomia-go/internal/storage/redis"
)

// sweepInterval is how often abandoned rooms and idle hubs are reaped
const sweepInterval = 5 * time.Minute

func main() {
	cfg := &serverConfig{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func run(ctx context.Context, cfg *serverConfig) error {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.storageType,
		RoomConfig: room.Config{
			MinPlayers: cfg.minPlayers,
			MaxPlayers: room.DefaultConfig().MaxPlayers,
			RoomTTL:    cfg.roomTTL,
		},
		DisconnectGrace: cfg.disconnectGrace,
	}

	if cfg.storageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.redisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		RoomController: app.RoomController,
		GameHandler:    app.GameHandler,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.bind
	serverConfig.Port = cfg.port
	server := api.NewServer(router, serverConfig, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Periodically evict abandoned rooms and the hubs left behind
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				swept, err := app.RoomController.SweepExpired(ctx)
				if err != nil {
					logger.Warn("room sweep failed", slog.Any("error", err))
					continue
				}
				if swept > 0 {
					logger.Info("swept expired rooms", slog.Int("count", swept))
				}
				app.HubManager.CleanupEmptyHubs()
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	}
}
