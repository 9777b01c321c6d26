package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/atendimentos/backend/internal/repo"
)

const defaultLimit = 100
const maxLimit = 500

var errInvalidTipo = errors.New("tipo inválido")

// ParseListFilter reads q, tipo, limit and offset from query params. Default limit is 100, max 500.
func ParseListFilter(r *http.Request) (repo.Filter, error) {
	q := r.URL.Query()
	f := repo.Filter{
		Query: strings.TrimSpace(q.Get("q")),
		Limit: defaultLimit,
	}
	if t := strings.TrimSpace(q.Get("tipo")); t != "" {
		f.Tipo = atendimento.Tipo(t)
		if !f.Tipo.Valid() {
			return repo.Filter{}, errInvalidTipo
		}
	}
	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			f.Limit = n
			if f.Limit > maxLimit {
				f.Limit = maxLimit
			}
		}
	}
	if s := q.Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			f.Offset = n
		}
	}
	return f, nil
}
