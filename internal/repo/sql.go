package repo

import (
	"context"

	"github.com/atendimentos/backend/internal/atendimento"
	"gorm.io/gorm"
)

// SQLStore is the single-handle PostgreSQL backend: gorm running hand-written SQL.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) List(ctx context.Context, f Filter) ([]atendimento.Atendimento, error) {
	where, args := f.where(question)
	q := `SELECT ` + selectColumns + ` FROM atendimentos` + where + ` ORDER BY data DESC, id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}
	list := []atendimento.Atendimento{}
	err := s.db.WithContext(ctx).Raw(q, args...).Scan(&list).Error
	return list, err
}

func (s *SQLStore) Count(ctx context.Context, f Filter) (int, error) {
	where, args := f.where(question)
	var n int
	err := s.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM atendimentos`+where, args...).Scan(&n).Error
	return n, err
}

func (s *SQLStore) Get(ctx context.Context, id int64) (*atendimento.Atendimento, error) {
	var a atendimento.Atendimento
	err := s.db.WithContext(ctx).Raw(`SELECT `+selectColumns+` FROM atendimentos WHERE id = ?`, id).Scan(&a).Error
	return found(&a, err)
}

func (s *SQLStore) Create(ctx context.Context, in atendimento.Input) (*atendimento.Atendimento, error) {
	var a atendimento.Atendimento
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO atendimentos (nome, profissional, data, tipo, observacoes)
		VALUES (?, ?, ?::date, ?, NULLIF(?, ''))
		RETURNING `+selectColumns,
		in.Nome, in.Profissional, in.Data, string(in.Tipo), in.Observacoes).Scan(&a).Error
	return found(&a, err)
}

func (s *SQLStore) Update(ctx context.Context, id int64, in atendimento.Input) (*atendimento.Atendimento, error) {
	var a atendimento.Atendimento
	err := s.db.WithContext(ctx).Raw(`
		UPDATE atendimentos
		SET nome = ?, profissional = ?, data = ?::date, tipo = ?,
		    observacoes = NULLIF(?, ''), updated_at = now()
		WHERE id = ?
		RETURNING `+selectColumns,
		in.Nome, in.Profissional, in.Data, string(in.Tipo), in.Observacoes, id).Scan(&a).Error
	return found(&a, err)
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Exec(`DELETE FROM atendimentos WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// found maps an empty scan (Raw().Scan leaves the zero value when no row matches) to ErrNotFound.
func found(a *atendimento.Atendimento, err error) (*atendimento.Atendimento, error) {
	if err != nil {
		return nil, mapPgError(err)
	}
	if a.ID == 0 {
		return nil, ErrNotFound
	}
	return a, nil
}
