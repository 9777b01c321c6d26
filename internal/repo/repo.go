// Package repo persists atendimentos. Three backends share the Store contract:
// pgxpool (PoolStore), gorm over a single database handle (SQLStore) and an
// in-memory mock (MemoryStore).
package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("atendimento not found")

// ErrConstraint is returned when PostgreSQL rejects a row through a CHECK constraint
// or an unparseable date, i.e. input that skipped validation.
var ErrConstraint = errors.New("atendimento violates table constraints")

type Store interface {
	List(ctx context.Context, f Filter) ([]atendimento.Atendimento, error)
	Count(ctx context.Context, f Filter) (int, error)
	Get(ctx context.Context, id int64) (*atendimento.Atendimento, error)
	Create(ctx context.Context, in atendimento.Input) (*atendimento.Atendimento, error)
	Update(ctx context.Context, id int64, in atendimento.Input) (*atendimento.Atendimento, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Filter restricts List/Count. Query is a case-insensitive substring over nome,
// profissional and observacoes; Tipo is an exact match. Limit 0 means no limit.
type Filter struct {
	Query  string
	Tipo   atendimento.Tipo
	Limit  int
	Offset int
}

// Key identifies the filter in cache keys.
func (f Filter) Key() string {
	return "q=" + strings.ToLower(f.Query) + "&tipo=" + string(f.Tipo) +
		"&limit=" + strconv.Itoa(f.Limit) + "&offset=" + strconv.Itoa(f.Offset)
}

const selectColumns = `id, nome, profissional, data::text AS data, tipo,
		       COALESCE(observacoes, '') AS observacoes, created_at, updated_at`

// where builds the WHERE clause for f. ph renders the placeholder of the n-th argument (1-based).
func (f Filter) where(ph func(n int) string) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		var ors []string
		for _, col := range []string{"nome", "profissional", "COALESCE(observacoes, '')"} {
			args = append(args, pattern)
			ors = append(ors, col+" ILIKE "+ph(len(args)))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	if f.Tipo != "" {
		args = append(args, string(f.Tipo))
		conds = append(conds, "tipo = "+ph(len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// mapPgError translates the PostgreSQL codes the schema can raise on bad input.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514", "23502", "22007", "22008", "22001":
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.Message)
		}
	}
	return err
}

func dollar(n int) string { return "$" + strconv.Itoa(n) }

func question(int) string { return "?" }
