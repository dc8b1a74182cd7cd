// Package room parses room command flags and composes the room process.
package room

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/pointing.space/internal/platform/cmd"
	"github.com/louisbranch/pointing.space/internal/platform/config"
	server "github.com/louisbranch/pointing.space/internal/services/room/app"
	"github.com/louisbranch/pointing.space/internal/services/room/domain/engine"
)

// Config holds room command configuration.
type Config struct {
	HTTPAddr    string `env:"ROOM_HTTP_ADDR"    envDefault:":8090"`
	JournalPath string `env:"ROOM_JOURNAL_PATH"`
	DeckPath    string `env:"ROOM_DECK_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "room HTTP listen address")
	fs.StringVar(&cfg.JournalPath, "journal-path", cfg.JournalPath, "SQLite event journal path (empty disables the journal)")
	fs.StringVar(&cfg.DeckPath, "deck-path", cfg.DeckPath, "YAML card deck path (empty uses the built-in deck)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run checks the handler registries and serves rooms until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if _, err := engine.BuildRegistries(); err != nil {
		config.Exitf("room registries are inconsistent: %v", err)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRoom, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:    cfg.HTTPAddr,
			JournalPath: cfg.JournalPath,
			DeckPath:    cfg.DeckPath,
		}); err != nil {
			return fmt.Errorf("serve room: %w", err)
		}
		return nil
	})
}
