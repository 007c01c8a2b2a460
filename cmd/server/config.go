package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type serverConfig struct {
	bind            string
	port            int
	storageType     string
	redisURL        string
	roomTTL         time.Duration
	disconnectGrace time.Duration
	minPlayers      int
	verbose         bool
}

func (c *serverConfig) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.storageType == "redis" && c.redisURL == "" {
		return fmt.Errorf("--redis-url is required when --storage-type is redis")
	}
	if c.minPlayers < 2 {
		return fmt.Errorf("invalid min-players (must be at least 2): %d", c.minPlayers)
	}
	return nil
}

func newCmd(cfg *serverConfig) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ANOMIA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "anomia-server",
		Short:         "Realtime server for the Anomia card game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: ANOMIA_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: ANOMIA_PORT)")
	fs.StringVar(&cfg.storageType, "storage-type", "memory", "room storage backend, memory or redis (env: ANOMIA_STORAGE_TYPE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection URL (env: ANOMIA_REDIS_URL)")
	fs.DurationVar(&cfg.roomTTL, "room-ttl", 2*time.Hour, "time before abandoned rooms are swept (env: ANOMIA_ROOM_TTL)")
	fs.DurationVar(&cfg.disconnectGrace, "disconnect-grace", 2*time.Minute, "time a dropped player's seat is held for reconnection (env: ANOMIA_DISCONNECT_GRACE)")
	fs.IntVar(&cfg.minPlayers, "min-players", 2, "minimum players required to start a game (env: ANOMIA_MIN_PLAYERS)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "enable debug logging (env: ANOMIA_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}
