package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/courseapi/internal/config"
	"github.com/geocoder89/courseapi/internal/db"
	apphttp "github.com/geocoder89/courseapi/internal/http"
	"github.com/geocoder89/courseapi/internal/http/handlers"
	"github.com/geocoder89/courseapi/internal/observability"
	"github.com/geocoder89/courseapi/internal/repo/memory"
	"github.com/geocoder89/courseapi/internal/repo/postgres"
)

type configKey struct{}

func loadConfig(ctx context.Context) (config.Config, *slog.Logger, error) {
	cfg, ok := ctx.Value(configKey{}).(config.Config)
	if !ok {
		return config.Config{}, nil, errors.New("configuration not loaded")
	}
	return cfg, slog.Default(), nil
}

type stores struct {
	Users   apphttp.UsersStore
	Courses handlers.CoursesStore
	Ping    handlers.Pinger
	Close   func()
}

// openStores connects the configured backend. Postgres is migrated first
// when cfg.MigrateOnStart is set.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger, prom *observability.Prom) (stores, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.WarnContext(ctx, "using in-memory store; data is lost on exit")
		users := memory.NewUsersRepo()
		return stores{
			Users:   users,
			Courses: memory.NewCoursesRepo(users),
			Close:   func() {},
		}, nil

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}

		if cfg.MigrateOnStart {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return stores{}, err
			}
		}

		return stores{
			Users:   postgres.NewUsersRepo(pool, prom),
			Courses: postgres.NewCoursesRepo(pool, prom),
			Ping:    func(ctx context.Context) error { return pool.Ping(ctx) },
			Close:   pool.Close,
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
