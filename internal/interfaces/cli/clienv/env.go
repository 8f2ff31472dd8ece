// Package clienv loads configuration and opens the shared connections for a
// CLI command.
package clienv

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/examforge/examforge/internal/infrastructure/cache"
	"github.com/examforge/examforge/internal/infrastructure/config"
	"github.com/examforge/examforge/internal/infrastructure/database"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
)

// Options selects what Init opens.
type Options struct {
	Environment string
	ConfigPath  string
	// SkipDatabase leaves DB nil, for commands that only need config.
	SkipDatabase bool
	// WithRedis opens redis when the config enables it.
	WithRedis bool
}

// Env is the per-command runtime.
type Env struct {
	Config *config.Config
	Log    logger.Interface
	DB     *gorm.DB
	Redis  *redis.Client
}

// Init loads config, sets up logging and the business timezone, then opens
// the database and optionally redis.
func Init(ctx context.Context, opts Options) (*Env, error) {
	mode := GinMode(opts.Environment)

	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFile(opts.ConfigPath, mode)
	} else {
		cfg, err = config.Load(mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.IsDebug()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Billing.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	env := &Env{
		Config: cfg,
		Log:    logger.NewLogger(),
	}

	if !opts.SkipDatabase {
		if err := database.Init(&cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		env.DB = database.Get()
	}

	if opts.WithRedis && cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Redis = client
	}

	return env, nil
}

// Close releases whatever Init opened.
func (e *Env) Close() {
	if e.Redis != nil {
		if err := e.Redis.Close(); err != nil {
			e.Log.Warnw("failed to close redis", "error", err)
		}
	}
	if e.DB != nil {
		if err := database.Close(); err != nil {
			e.Log.Warnw("failed to close database", "error", err)
		}
	}
}

// GinMode maps a deployment environment onto a gin mode.
func GinMode(environment string) string {
	switch strings.ToLower(environment) {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
