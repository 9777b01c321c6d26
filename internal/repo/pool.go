package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolStore is the pooled PostgreSQL backend.
type PoolStore struct {
	pool *pgxpool.Pool
}

func NewPoolStore(pool *pgxpool.Pool) *PoolStore {
	return &PoolStore{pool: pool}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAtendimento(row rowScanner) (atendimento.Atendimento, error) {
	var a atendimento.Atendimento
	var tipo string
	err := row.Scan(&a.ID, &a.Nome, &a.Profissional, &a.Data, &tipo, &a.Observacoes, &a.CreatedAt, &a.UpdatedAt)
	a.Tipo = atendimento.Tipo(tipo)
	return a, err
}

func (s *PoolStore) List(ctx context.Context, f Filter) ([]atendimento.Atendimento, error) {
	where, args := f.where(dollar)
	q := `SELECT ` + selectColumns + ` FROM atendimentos` + where + ` ORDER BY data DESC, id DESC`
	if f.Limit > 0 {
		q += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (atendimento.Atendimento, error) {
		return scanAtendimento(row)
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []atendimento.Atendimento{}
	}
	return list, nil
}

func (s *PoolStore) Count(ctx context.Context, f Filter) (int, error) {
	where, args := f.where(dollar)
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM atendimentos`+where, args...).Scan(&n)
	return n, err
}

func (s *PoolStore) Get(ctx context.Context, id int64) (*atendimento.Atendimento, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM atendimentos WHERE id = $1`, id)
	return oneRow(row)
}

func (s *PoolStore) Create(ctx context.Context, in atendimento.Input) (*atendimento.Atendimento, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO atendimentos (nome, profissional, data, tipo, observacoes)
		VALUES ($1, $2, $3::date, $4, NULLIF($5, ''))
		RETURNING `+selectColumns,
		in.Nome, in.Profissional, in.Data, string(in.Tipo), in.Observacoes)
	return oneRow(row)
}

func (s *PoolStore) Update(ctx context.Context, id int64, in atendimento.Input) (*atendimento.Atendimento, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE atendimentos
		SET nome = $1, profissional = $2, data = $3::date, tipo = $4,
		    observacoes = NULLIF($5, ''), updated_at = now()
		WHERE id = $6
		RETURNING `+selectColumns,
		in.Nome, in.Profissional, in.Data, string(in.Tipo), in.Observacoes, id)
	return oneRow(row)
}

func (s *PoolStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM atendimentos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PoolStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func oneRow(row pgx.Row) (*atendimento.Atendimento, error) {
	a, err := scanAtendimento(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapPgError(err)
	}
	return &a, nil
}
