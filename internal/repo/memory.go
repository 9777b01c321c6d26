package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atendimentos/backend/internal/atendimento"
)

// MemoryStore keeps atendimentos in process memory. It backs the mock server
// (STORAGE_DRIVER=memory) and the HTTP tests.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[int64]atendimento.Atendimento
	nextID int64
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[int64]atendimento.Atendimento), nextID: 1, now: time.Now}
}

func (s *MemoryStore) List(ctx context.Context, f Filter) ([]atendimento.Atendimento, error) {
	s.mu.RLock()
	matched := s.matching(f)
	s.mu.RUnlock()
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Data != matched[j].Data {
			return matched[i].Data > matched[j].Data
		}
		return matched[i].ID > matched[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return []atendimento.Atendimento{}, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (s *MemoryStore) Count(ctx context.Context, f Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(f)), nil
}

// matching must be called with s.mu held.
func (s *MemoryStore) matching(f Filter) []atendimento.Atendimento {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []atendimento.Atendimento{}
	for _, a := range s.items {
		if f.Tipo != "" && a.Tipo != f.Tipo {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Nome), q) &&
			!strings.Contains(strings.ToLower(a.Profissional), q) &&
			!strings.Contains(strings.ToLower(a.Observacoes), q) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*atendimento.Atendimento, error) {
	s.mu.RLock()
	a, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) Create(ctx context.Context, in atendimento.Input) (*atendimento.Atendimento, error) {
	now := s.now().UTC()
	s.mu.Lock()
	a := atendimento.Atendimento{
		ID:           s.nextID,
		Nome:         in.Nome,
		Profissional: in.Profissional,
		Data:         in.Data,
		Tipo:         in.Tipo,
		Observacoes:  in.Observacoes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.items[a.ID] = a
	s.nextID++
	s.mu.Unlock()
	return &a, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, in atendimento.Input) (*atendimento.Atendimento, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Nome = in.Nome
	a.Profissional = in.Profissional
	a.Data = in.Data
	a.Tipo = in.Tipo
	a.Observacoes = in.Observacoes
	a.UpdatedAt = s.now().UTC()
	s.items[id] = a
	return &a, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }
