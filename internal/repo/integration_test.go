//go:build integration

package repo

import (
	"context"
	"testing"

	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/atendimentos/backend/internal/migrate"
	"github.com/atendimentos/backend/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_SQLStore_Contract(t *testing.T) {
	ctx := context.Background()
	db, _ := testutil.OpenDB(ctx, testutil.DatabaseURL(t))
	require.NotNil(t, db, "open database")
	sqlDB, _ := db.DB()
	defer sqlDB.Close()
	require.NoError(t, testutil.MustMigrate(ctx, db))
	require.NoError(t, testutil.Truncate(ctx, db))

	testStoreContract(t, NewSQLStore(db))
}

func TestIntegration_PoolStore_Contract(t *testing.T) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, testutil.DatabaseURL(t))
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, migrate.RunOnPool(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE atendimentos RESTART IDENTITY`)
	require.NoError(t, err)

	testStoreContract(t, Instrument(NewPoolStore(pool), "pool"))
}

func TestIntegration_MigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, _ := testutil.OpenDB(ctx, testutil.DatabaseURL(t))
	require.NotNil(t, db)
	sqlDB, _ := db.DB()
	defer sqlDB.Close()
	require.NoError(t, testutil.MustMigrate(ctx, db))
	require.NoError(t, testutil.MustMigrate(ctx, db))

	var n int
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n).Error)
	require.Equal(t, 3, n)
}

// Entradas que escapam da validação são barradas pelas constraints da tabela.
func TestIntegration_ConstraintViolations(t *testing.T) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, testutil.DatabaseURL(t))
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, migrate.RunOnPool(ctx, pool))

	s := NewPoolStore(pool)
	base := atendimento.Input{Nome: "Ana Paula", Profissional: "Dr. Rui", Data: "2024-01-02", Tipo: atendimento.TipoPedagogico}

	bad := base
	bad.Tipo = "Outro"
	_, err = s.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrConstraint)

	bad = base
	bad.Data = "2024-02-30"
	_, err = s.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrConstraint)

	bad = base
	bad.Nome = "A"
	_, err = s.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrConstraint)
}
