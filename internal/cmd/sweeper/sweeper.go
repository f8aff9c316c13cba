// Package sweeper parses sweeper command flags and starts the expiry sweep
// job.
package sweeper

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/confide.space/internal/platform/cmd"
	"github.com/louisbranch/confide.space/internal/services/confessions/storage/sqlite"
	"github.com/louisbranch/confide.space/internal/services/confessions/sweep"
)

// Config holds sweeper command configuration.
type Config struct {
	DBPath   string        `env:"CONFIDE_SPACE_CONFESSIONS_DB_PATH"`
	Interval time.Duration `env:"CONFIDE_SPACE_SWEEP_INTERVAL" envDefault:"10m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The confessions database path")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "How often to sweep expired confessions")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the sweep loop until the context ends.
func Run(ctx context.Context, cfg Config) error {
	path := strings.TrimSpace(cfg.DBPath)
	if path == "" {
		return fmt.Errorf("CONFIDE_SPACE_CONFESSIONS_DB_PATH is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSweeper, func(context.Context) error {
		store, err := sqlite.Open(path)
		if err != nil {
			return fmt.Errorf("open confession sqlite store: %w", err)
		}
		defer func() { _ = store.Close() }()

		err = sweep.New(store, cfg.Interval).Run(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	})
}
