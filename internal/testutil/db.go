package testutil

import (
	"context"
	"os"

	"github.com/atendimentos/backend/internal/migrate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB abre conexão GORM a partir de url (ou DATABASE_URL quando vazio). Se não houver, retorna nil.
func OpenDB(ctx context.Context, url string) (*gorm.DB, string) {
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, ""
	}
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, url
	}
	if _, err := db.DB(); err != nil {
		return nil, url
	}
	return db, url
}

func MustMigrate(ctx context.Context, db *gorm.DB) error {
	return migrate.Run(ctx, db, migrate.Migrations())
}

// Truncate esvazia a tabela e reinicia a sequência de ids.
func Truncate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(`TRUNCATE atendimentos RESTART IDENTITY`).Error
}
