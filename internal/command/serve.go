package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/geocoder89/courseapi/internal/cache"
	"github.com/geocoder89/courseapi/internal/config"
	"github.com/geocoder89/courseapi/internal/db"
	apphttp "github.com/geocoder89/courseapi/internal/http"
	"github.com/geocoder89/courseapi/internal/observability"
	"github.com/geocoder89/courseapi/internal/security"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			if cfg.TracingEnabled {
				shutdown, err := observability.InitTracer(ctx, observability.TracerConfig{
					ServiceName: cfg.ServiceName,
					Env:         cfg.Env,
					Endpoint:    cfg.OTLPEndpoint,
					SampleRatio: cfg.TraceSampleRatio,
				})
				if err != nil {
					return err
				}
				defer func() {
					sctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					runErr = errors.Join(runErr, shutdown(sctx))
				}()
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			prom := observability.NewProm(reg)

			st, err := openStores(ctx, cfg, logger, prom)
			if err != nil {
				return err
			}
			defer st.Close()

			hasher := security.NewBcryptHasher(cfg.BcryptCost)

			created, err := db.EnsureSeedUser(ctx, st.Users, hasher, db.SeedUser{
				FirstName: cfg.SeedFirstName,
				LastName:  cfg.SeedLastName,
				Email:     cfg.SeedEmail,
				Password:  cfg.SeedPassword,
			})
			if err != nil {
				return fmt.Errorf("seed user: %w", err)
			}
			if created {
				logger.InfoContext(ctx, "seed user created", "email", cfg.SeedEmail)
			}

			var draining atomic.Bool

			courseCache, closeCache := newCache(ctx, cfg, logger)
			defer closeCache()

			router := apphttp.NewRouter(logger, apphttp.Options{
				Env:            cfg.Env,
				ServiceName:    cfg.ServiceName,
				TracingEnabled: cfg.TracingEnabled,
				CORSOrigins:    cfg.CORSOrigins,
				MaxBodyBytes:   cfg.MaxBodyBytes,
			}, apphttp.Deps{
				Users:   st.Users,
				Courses: st.Courses,
				Hasher:  hasher,
				Cache:   courseCache,
				Prom:    prom,
				Ping:    st.Ping,

				Draining: draining.Load,
			})

			// server set up
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Port),
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			grp, gctx := errgroup.WithContext(ctx)

			grp.Go(func() error {
				logger.InfoContext(gctx, "server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			// Graceful shutdown
			grp.Go(func() error {
				<-gctx.Done()
				draining.Store(true)
				logger.Info("server shutting down")

				sctx, cancel := config.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(sctx); err != nil {
					logger.Error("graceful shutdown failed", "err", err)
					return err
				}
				logger.Info("shutdown complete")
				return nil
			})

			return grp.Wait()
		},
	}
}

// newCache prefers redis when an address is configured and falls back to the
// in-process cache when redis is unreachable at start-up.
func newCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.CacheTTL), func() {}
	}

	rc := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	}, logger)

	pctx, cancel := config.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rc.Ping(pctx); err != nil {
		logger.WarnContext(ctx, "redis unavailable, using in-process cache", "addr", cfg.RedisAddr, "err", err)
		_ = rc.Close()
		return cache.NewMemory(cfg.CacheTTL), func() {}
	}

	return rc, func() { _ = rc.Close() }
}
