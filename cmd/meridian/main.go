package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/meridianworks/meridian/pkg/access"
	"github.com/meridianworks/meridian/pkg/api"
	"github.com/meridianworks/meridian/pkg/config"
	"github.com/meridianworks/meridian/pkg/directory"
	"github.com/meridianworks/meridian/pkg/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "meridian: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("starting meridian")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Directory database.
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MinConns)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}
	if err := directory.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	// Operator settings with hot reload.
	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return err
	}
	settingsStore := config.NewSettingsStore(settings)
	if err := config.WatchSettings(ctx, cfg.SettingsPath, settingsStore, logger); err != nil {
		return err
	}

	engine := access.NewEngine(settings.OwnerEmail)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	// Profile store, fronted by redis when configured, LRU otherwise.
	store := directory.NewStore(db)
	var cache directory.ProfileCache
	var redisCache *directory.RedisCache
	if cfg.Cache.RedisURL != "" {
		redisCache, err = directory.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.RedisPassword, cfg.Cache.TTL)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		cache = redisCache
	} else {
		cache = directory.NewLRUCache(cfg.Cache.LRUSize, cfg.Cache.TTL)
	}
	cached := directory.NewCachedStore(store, cache, metrics)

	// Handlers log through logrus; the request plumbing stays on the
	// structured logger.
	apiLogger := logrus.New()
	apiLogger.SetFormatter(&logrus.JSONFormatter{})

	server := api.NewServer(engine, cached, apiLogger, logger, metrics)
	handler := server.Router(cached)

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on their own port so probes bypass the API chain.
	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(db, redisClientOf(redisCache))
	observability.RegisterHealthRoutes(healthMux, checker)
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	// Nightly sweep of pending invites that never activated.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("30 2 * * *", func() {
		ttl := settingsStore.Current().PendingInviteTTL()
		purged, err := store.PurgeStalePending(context.Background(), ttl)
		if err != nil {
			logger.WithError(err).Error("pending invite purge failed")
			return
		}
		if purged > 0 {
			logger.WithField("purged", purged).Info("purged stale pending invites")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule purge job: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	if metrics != nil {
		go pollGauges(ctx, db, store, metrics, logger)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("api server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("api server shutdown error")
		}
		return healthServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// redisClientOf unwraps the optional shared cache for readiness probes.
func redisClientOf(cache *directory.RedisCache) *redis.Client {
	if cache == nil {
		return nil
	}
	return cache.Client()
}

// pollGauges refreshes the connection-pool and profile-count gauges.
func pollGauges(ctx context.Context, db *sql.DB, store *directory.Store, metrics *observability.Metrics, logger *observability.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			metrics.DBConnectionsActive.Set(float64(stats.InUse))
			metrics.DBConnectionsIdle.Set(float64(stats.Idle))

			users, err := store.List(ctx)
			if err != nil {
				logger.WithError(err).Warn("profile gauge refresh failed")
				continue
			}
			pending := 0
			for i := range users {
				if users[i].Pending() {
					pending++
				}
			}
			metrics.ProfilesTotal.Set(float64(len(users)))
			metrics.PendingProfilesTotal.Set(float64(pending))
		}
	}
}
