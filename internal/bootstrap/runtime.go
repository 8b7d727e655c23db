// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/events"
	"socialhub/internal/identity"
	"socialhub/internal/middleware"
	"socialhub/internal/server"
	"socialhub/internal/storage"

	"github.com/redis/go-redis/v9"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to DB_SCHEMA_MODE after connecting.
	ApplySchema bool
}

// InitRuntime connects to the database, Redis, object storage and the event
// backend. Redis is optional: an unreachable server is logged and skipped.
// On error everything opened so far is released.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (deps server.Deps, err error) {
	defer func() {
		if err != nil {
			_ = Close(deps)
			deps = server.Deps{}
		}
	}()

	deps.DB, err = database.Connect(cfg)
	if err != nil {
		return deps, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err = database.ApplySchema(ctx, deps.DB, cfg); err != nil {
			return deps, fmt.Errorf("apply schema: %w", err)
		}
	}

	deps.Redis = connectRedis(ctx, cfg)

	deps.Store, err = storage.New(ctx, cfg)
	if err != nil {
		return deps, fmt.Errorf("object storage: %w", err)
	}

	deps.Publisher, err = events.New(cfg, deps.Redis)
	if err != nil {
		return deps, fmt.Errorf("events backend: %w", err)
	}

	deps.Verifier = NewVerifier(cfg)
	return deps, nil
}

// NewVerifier builds the JWT verifier configured by JWT_SECRET, JWT_ISSUER
// and JWT_AUDIENCE.
func NewVerifier(cfg *config.Config) *identity.JWTVerifier {
	return identity.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
}

func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisURL)
	if addr == "" {
		middleware.Logger.Info("Redis not configured; caching disabled")
		return nil
	}
	rdb, err := cache.NewRedisClient(ctx, addr)
	if err != nil {
		middleware.Logger.Warn("Redis unavailable; continuing without cache",
			slog.String("addr", addr),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return rdb
}

// Close releases whatever InitRuntime opened. It is safe on partial Deps.
func Close(deps server.Deps) error {
	var errs []error
	if deps.Publisher != nil {
		errs = append(errs, deps.Publisher.Close())
	}
	if deps.Redis != nil {
		errs = append(errs, deps.Redis.Close())
	}
	errs = append(errs, database.Close(deps.DB))
	return errors.Join(errs...)
}
