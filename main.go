package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atendimentos/backend/internal/api"
	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/atendimentos/backend/internal/cache"
	"github.com/atendimentos/backend/internal/config"
	"github.com/atendimentos/backend/internal/logging"
	"github.com/atendimentos/backend/internal/middleware"
	"github.com/atendimentos/backend/internal/migrate"
	"github.com/atendimentos/backend/internal/repo"
	"github.com/atendimentos/backend/internal/seed"
	"github.com/atendimentos/backend/internal/service"
	"github.com/atendimentos/backend/web"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel, "atendimentos-backend")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeStore()
	log.Info("storage ready", zap.String("driver", cfg.StorageDriver))
	store = repo.Instrument(store, cfg.StorageDriver)

	if cfg.SeedSampleData {
		n, err := seed.Run(ctx, store)
		if err != nil {
			log.Warn("seed", zap.Error(err))
		} else if n > 0 {
			log.Info("seeded sample atendimentos", zap.Int("count", n))
		}
	}

	c, err := openCache(ctx, cfg, log)
	if err != nil {
		log.Fatal("cache", zap.String("driver", cfg.CacheDriver), zap.Error(err))
	}
	defer func() { _ = c.Close() }()

	validator := atendimento.NewValidator(cfg.Location())
	svc := service.New(store, c, validator, log)
	h := &api.Handler{Svc: svc, Log: log}

	r := mux.NewRouter()
	r.Use(middleware.Metrics)
	h.Register(r)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	api.MountFrontend(r, web.Handler())

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	chain := middleware.Recover(log)(
		middleware.RequestID(
			middleware.AccessLog(log)(
				middleware.Timeout(timeout)(
					middleware.CORS(cfg.CORSOrigins)(
						middleware.Gzip(r))))))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      chain,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
	}

	go func() {
		log.Info("backend listening", zap.String("addr", srv.Addr),
			zap.String("cache", cfg.CacheDriver), zap.String("timezone", cfg.Timezone))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("backend stopped")
}

// openStore builds the configured backend and applies migrations for the PostgreSQL ones.
// The returned func releases the connections.
func openStore(ctx context.Context, cfg *config.Config) (repo.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return repo.NewMemoryStore(), func() {}, nil

	case config.StoragePool:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required")
		}
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("config postgres: %w", err)
		}
		if cfg.DBMaxConns > 0 {
			poolConfig.MaxConns = int32(cfg.DBMaxConns)
		}
		if cfg.DBMinConns > 0 {
			poolConfig.MinConns = int32(cfg.DBMinConns)
		}
		if cfg.DBMaxConnLifetime > 0 {
			poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("conexão postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := migrate.RunOnPool(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return repo.NewPoolStore(pool), pool.Close, nil

	case config.StorageSQL:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required")
		}
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("db.DB: %w", err)
		}
		closeDB := func() { _ = sqlDB.Close() }
		if cfg.DBMaxConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.DBMaxConns)
		}
		if cfg.DBMaxConnLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.DBMaxConnLifetime)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("ping: %w", err)
		}
		if err := migrate.Run(ctx, db, migrate.Migrations()); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return repo.NewSQLStore(db), closeDB, nil
	}
	return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}

func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Cache, error) {
	switch cfg.CacheDriver {
	case config.CacheMemory:
		return cache.New(cfg.CacheTTL), nil
	case config.CacheRedis:
		return cache.NewRedis(ctx, cfg.RedisURL, "cache:", cfg.CacheTTL, log)
	}
	return nil, fmt.Errorf("unknown CACHE_DRIVER %q", cfg.CacheDriver)
}
