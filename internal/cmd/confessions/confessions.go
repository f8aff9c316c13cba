// Package confessions parses confessions command flags and starts the API
// service.
package confessions

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/confide.space/internal/platform/cmd"
	server "github.com/louisbranch/confide.space/internal/services/confessions/app"
)

// Config holds confessions command configuration.
type Config struct {
	Port int    `env:"CONFIDE_SPACE_CONFESSIONS_PORT" envDefault:"8080"`
	Addr string `env:"CONFIDE_SPACE_CONFESSIONS_ADDR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The confessions server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The confessions server listen address (overrides -port)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the confessions API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceConfessions, func(context.Context) error {
		if cfg.Addr != "" {
			return server.RunWithAddr(ctx, cfg.Addr)
		}
		return server.Run(ctx, cfg.Port)
	})
}
