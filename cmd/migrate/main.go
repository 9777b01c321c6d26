// Command migrate applies the schema migrations to DATABASE_URL and exits.
// With -seed it also inserts the sample atendimentos when the table is empty.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/atendimentos/backend/internal/config"
	"github.com/atendimentos/backend/internal/logging"
	"github.com/atendimentos/backend/internal/migrate"
	"github.com/atendimentos/backend/internal/repo"
	"github.com/atendimentos/backend/internal/seed"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	withSeed := flag.Bool("seed", false, "insert sample atendimentos into an empty table")
	timeout := flag.Duration("timeout", time.Minute, "overall deadline")
	flag.Parse()

	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel, "atendimentos-migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("db.DB", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatal("ping", zap.Error(err))
	}
	if err := migrate.Run(ctx, db, migrate.Migrations()); err != nil {
		log.Fatal("migrations", zap.Error(err))
	}
	log.Info("migrations applied")

	if *withSeed {
		n, err := seed.Run(ctx, repo.NewSQLStore(db))
		if err != nil {
			log.Fatal("seed", zap.Error(err))
		}
		log.Info("seed done", zap.Int("created", n))
	}
}
