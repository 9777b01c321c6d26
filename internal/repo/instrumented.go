package repo

import (
	"context"
	"errors"

	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/atendimentos/backend/internal/metrics"
)

// Instrument wraps s so every call is counted in metrics.StoreOperations under backend.
func Instrument(s Store, backend string) Store {
	return &instrumented{next: s, backend: backend}
}

type instrumented struct {
	next    Store
	backend string
}

func (s *instrumented) observe(op string, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	metrics.StoreOperations.WithLabelValues(s.backend, op, status).Inc()
}

func (s *instrumented) List(ctx context.Context, f Filter) ([]atendimento.Atendimento, error) {
	list, err := s.next.List(ctx, f)
	s.observe("list", err)
	return list, err
}

func (s *instrumented) Count(ctx context.Context, f Filter) (int, error) {
	n, err := s.next.Count(ctx, f)
	s.observe("count", err)
	return n, err
}

func (s *instrumented) Get(ctx context.Context, id int64) (*atendimento.Atendimento, error) {
	a, err := s.next.Get(ctx, id)
	s.observe("get", err)
	return a, err
}

func (s *instrumented) Create(ctx context.Context, in atendimento.Input) (*atendimento.Atendimento, error) {
	a, err := s.next.Create(ctx, in)
	s.observe("create", err)
	return a, err
}

func (s *instrumented) Update(ctx context.Context, id int64, in atendimento.Input) (*atendimento.Atendimento, error) {
	a, err := s.next.Update(ctx, id, in)
	s.observe("update", err)
	return a, err
}

func (s *instrumented) Delete(ctx context.Context, id int64) error {
	err := s.next.Delete(ctx, id)
	s.observe("delete", err)
	return err
}

func (s *instrumented) Ping(ctx context.Context) error {
	err := s.next.Ping(ctx)
	s.observe("ping", err)
	return err
}
