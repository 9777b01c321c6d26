// Package service orquestra validação, persistência e cache dos atendimentos.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/atendimentos/backend/internal/cache"
	"github.com/atendimentos/backend/internal/metrics"
	"github.com/atendimentos/backend/internal/repo"
	"go.uber.org/zap"
)

const (
	recordKeyPrefix = "atendimento:"
	listKeyPrefix   = "atendimentos:list:"
)

// Atendimentos is the use-case layer between HTTP handlers and the store.
type Atendimentos struct {
	store     repo.Store
	cache     cache.Cache
	validator *atendimento.Validator
	log       *zap.Logger

	// gen muda a cada escrita; leituras que começaram antes não repovoam o cache.
	gen atomic.Uint64
}

func New(store repo.Store, c cache.Cache, v *atendimento.Validator, log *zap.Logger) *Atendimentos {
	return &Atendimentos{store: store, cache: c, validator: v, log: log}
}

type listPage struct {
	Items []atendimento.Atendimento `json:"items"`
	Total int                       `json:"total"`
}

// List returns the page selected by f and the total number of matching records.
func (s *Atendimentos) List(ctx context.Context, f repo.Filter) ([]atendimento.Atendimento, int, error) {
	key := listKeyPrefix + f.Key()
	var page listPage
	if s.cached(ctx, key, &page) {
		return page.Items, page.Total, nil
	}
	gen := s.gen.Load()
	total, err := s.store.Count(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count atendimentos: %w", err)
	}
	items, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list atendimentos: %w", err)
	}
	s.remember(ctx, gen, key, listPage{Items: items, Total: total})
	return items, total, nil
}

func (s *Atendimentos) Get(ctx context.Context, id int64) (*atendimento.Atendimento, error) {
	key := recordKey(id)
	var a atendimento.Atendimento
	if s.cached(ctx, key, &a) {
		return &a, nil
	}
	gen := s.gen.Load()
	got, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get atendimento %d: %w", id, err)
	}
	s.remember(ctx, gen, key, got)
	return got, nil
}

func (s *Atendimentos) Create(ctx context.Context, in atendimento.Input) (*atendimento.Atendimento, error) {
	in = atendimento.Sanitize(in)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	a, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create atendimento: %w", err)
	}
	s.invalidate(ctx, a.ID)
	s.log.Info("atendimento criado", zap.Int64("id", a.ID), zap.String("tipo", string(a.Tipo)))
	return a, nil
}

func (s *Atendimentos) Update(ctx context.Context, id int64, in atendimento.Input) (*atendimento.Atendimento, error) {
	in = atendimento.Sanitize(in)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	a, err := s.store.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update atendimento %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	s.log.Info("atendimento atualizado", zap.Int64("id", id))
	return a, nil
}

func (s *Atendimentos) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete atendimento %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	s.log.Info("atendimento removido", zap.Int64("id", id))
	return nil
}

// Ping checks the store; used by the readiness probe.
func (s *Atendimentos) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Today is the reference date for the "not in the future" rule.
func (s *Atendimentos) Today() string {
	return s.validator.Today()
}

func (s *Atendimentos) invalidate(ctx context.Context, id int64) {
	s.gen.Add(1)
	s.cache.Delete(ctx, recordKey(id))
	s.cache.DeleteMatching(ctx, listKeyPrefix)
}

func (s *Atendimentos) cached(ctx context.Context, key string, dst interface{}) bool {
	raw, ok := s.cache.Get(ctx, key)
	if ok && json.Unmarshal(raw, dst) == nil {
		metrics.CacheRequests.WithLabelValues("hit").Inc()
		return true
	}
	metrics.CacheRequests.WithLabelValues("miss").Inc()
	return false
}

// remember caches v unless a write happened since gen was read. Writes from other
// instances sharing Redis are not seen here; CACHE_TTL bounds that staleness.
func (s *Atendimentos) remember(ctx context.Context, gen uint64, key string, v interface{}) {
	if s.gen.Load() != gen {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, raw)
}

func recordKey(id int64) string {
	return recordKeyPrefix + strconv.FormatInt(id, 10)
}
