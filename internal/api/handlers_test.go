package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/atendimentos/backend/internal/cache"
	"github.com/atendimentos/backend/internal/middleware"
	"github.com/atendimentos/backend/internal/repo"
	"github.com/atendimentos/backend/internal/service"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, store repo.Store) http.Handler {
	t.Helper()
	c := cache.New(time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	v := atendimento.NewValidator(time.UTC)
	v.SetClock(func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) })
	h := &Handler{Svc: service.New(store, c, v, zap.NewNop()), Log: zap.NewNop()}
	r := mux.NewRouter()
	h.Register(r)
	return middleware.RequestID(r)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

const validBody = `{"nome":"Maria Souza","profissional":"Dra. Ana","data":"2024-06-01","tipo":"Psicológico","observacoes":"Primeira sessão"}`

func TestAtendimentoCRUD(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryStore())

	rr := do(t, h, http.MethodPost, "/api/atendimento", validBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[atendimento.Atendimento](t, rr)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, atendimento.TipoPsicologico, created.Tipo)
	assert.Equal(t, "/api/atendimento/1", rr.Header().Get("Location"))
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	rr = do(t, h, http.MethodGet, "/api/atendimento/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Maria Souza", decode[atendimento.Atendimento](t, rr).Nome)

	rr = do(t, h, http.MethodGet, "/api/atendimentos", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]atendimento.Atendimento](t, rr), 1)
	assert.Equal(t, "1", rr.Header().Get("X-Total-Count"))

	upd := strings.Replace(validBody, "Psicológico", "Assistência Social", 1)
	rr = do(t, h, http.MethodPut, "/api/atendimento/1", upd)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, atendimento.TipoAssistenciaSocial, decode[atendimento.Atendimento](t, rr).Tipo)

	rr = do(t, h, http.MethodGet, "/api/atendimento/1", "")
	assert.Equal(t, atendimento.TipoAssistenciaSocial, decode[atendimento.Atendimento](t, rr).Tipo)

	rr = do(t, h, http.MethodDelete, "/api/atendimento/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "atendimento removido", decode[map[string]string](t, rr)["message"])

	rr = do(t, h, http.MethodGet, "/api/atendimento/1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/atendimentos", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestCreate_Validation(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryStore())

	rr := do(t, h, http.MethodPost, "/api/atendimento",
		`{"nome":"M","profissional":"","data":"2030-01-01","tipo":"Outro","observacoes":"`+strings.Repeat("a", 501)+`"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, rr)
	assert.Equal(t, "dados inválidos", body.Error)
	assert.Len(t, body.Fields, 5)

	rr = do(t, h, http.MethodPost, "/api/atendimento", `{"nome":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid body", decode[map[string]string](t, rr)["error"])

	rr = do(t, h, http.MethodPost, "/api/atendimento", `{"observacoes":"`+strings.Repeat("a", maxBodyBytes)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBadID(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryStore())
	for _, tc := range []struct{ method, body string }{
		{http.MethodGet, ""},
		{http.MethodPut, validBody},
		{http.MethodDelete, ""},
	} {
		rr := do(t, h, tc.method, "/api/atendimento/abc", tc.body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, tc.method)
		assert.Equal(t, "id inválido", decode[map[string]string](t, rr)["error"])
	}
	rr := do(t, h, http.MethodGet, "/api/atendimento/0", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestNotFound(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryStore())
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/atendimento/42", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/api/atendimento/42", validBody).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/atendimento/42", "").Code)

	rr := do(t, h, http.MethodPut, "/api/atendimento/42", `{"nome":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "validation runs before lookup")

	rr = do(t, h, http.MethodGet, "/api/nada", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "rota não encontrada", decode[map[string]string](t, rr)["error"])
	rr = do(t, h, http.MethodPatch, "/api/atendimento/1", validBody)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "método não permitido", decode[map[string]string](t, rr)["error"])
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPatch, "/api/atendimentos", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/health", "").Code)
}

func TestMountFrontend(t *testing.T) {
	c := cache.New(time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	h := &Handler{Svc: service.New(repo.NewMemoryStore(), c, atendimento.NewValidator(time.UTC), zap.NewNop()), Log: zap.NewNop()}
	r := mux.NewRouter()
	h.Register(r)
	MountFrontend(r, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("frontend"))
	}))

	rr := do(t, r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "frontend", rr.Body.String())
	rr = do(t, r, http.MethodGet, "/app.js", "")
	assert.Equal(t, "frontend", rr.Body.String())

	rr = do(t, r, http.MethodGet, "/api/nada", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "rota não encontrada", decode[map[string]string](t, rr)["error"])

	rr = do(t, r, http.MethodPatch, "/api/atendimento/1", validBody)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = do(t, r, http.MethodGet, "/api/tipos", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Psicológico")
}

func TestList_Filters(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryStore())
	bodies := []string{
		`{"nome":"Ana Paula","profissional":"Carlos","data":"2024-01-10","tipo":"Pedagógico"}`,
		`{"nome":"Bruno","profissional":"Dra. Ana","data":"2024-02-10","tipo":"Psicológico"}`,
		`{"nome":"Carla","profissional":"Rita","data":"2024-03-10","tipo":"Psicológico","observacoes":"ver com a família"}`,
	}
	for _, b := range bodies {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/atendimento", b).Code)
	}

	rr := do(t, h, http.MethodGet, "/api/atendimentos?q=ana", "")
	assert.Len(t, decode[[]atendimento.Atendimento](t, rr), 2)

	rr = do(t, h, http.MethodGet, "/api/atendimentos?tipo="+url.QueryEscape(string(atendimento.TipoPsicologico)), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "2", rr.Header().Get("X-Total-Count"))
	list := decode[[]atendimento.Atendimento](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, "Carla", list[0].Nome, "newest first")

	rr = do(t, h, http.MethodGet, "/api/atendimentos?q=fam%C3%ADlia", "")
	assert.Len(t, decode[[]atendimento.Atendimento](t, rr), 1)

	rr = do(t, h, http.MethodGet, "/api/atendimentos?limit=1&offset=1", "")
	list = decode[[]atendimento.Atendimento](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, "Bruno", list[0].Nome)
	assert.Equal(t, "3", rr.Header().Get("X-Total-Count"))

	rr = do(t, h, http.MethodGet, "/api/atendimentos?tipo=Outro", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListTipos(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryStore())
	rr := do(t, h, http.MethodGet, "/api/tipos", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[struct {
		Tipos []string `json:"tipos"`
		Hoje  string   `json:"hoje"`
	}](t, rr)
	assert.Equal(t, []string{"Psicológico", "Pedagógico", "Assistência Social"}, body.Tipos)
	assert.Equal(t, "2024-06-15", body.Hoje)
}

// failingStore fails every call with err.
type failingStore struct {
	repo.Store
	err error
}

func (s failingStore) List(context.Context, repo.Filter) ([]atendimento.Atendimento, error) {
	return nil, s.err
}
func (s failingStore) Count(context.Context, repo.Filter) (int, error) { return 0, s.err }
func (s failingStore) Create(context.Context, atendimento.Input) (*atendimento.Atendimento, error) {
	return nil, s.err
}
func (s failingStore) Ping(context.Context) error { return s.err }

func TestStoreFailures(t *testing.T) {
	h := newTestRouter(t, failingStore{err: errors.New("connection refused")})

	rr := do(t, h, http.MethodGet, "/api/atendimentos", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decode[map[string]string](t, rr)
	assert.Equal(t, "internal", body["error"])
	assert.Equal(t, rr.Header().Get("X-Request-ID"), body["request_id"])
	assert.NotContains(t, rr.Body.String(), "connection refused")

	rr = do(t, h, http.MethodPost, "/api/atendimento", validBody)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)

	h = newTestRouter(t, failingStore{err: context.DeadlineExceeded})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/api/atendimentos", "").Code)

	h = newTestRouter(t, failingStore{err: fmt.Errorf("%w: check", repo.ErrConstraint)})
	rr = do(t, h, http.MethodPost, "/api/atendimento", validBody)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "dados inválidos", decode[map[string]string](t, rr)["error"])
}

func TestIngestFrontendError(t *testing.T) {
	h := newTestRouter(t, repo.NewMemoryStore())
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(map[string]interface{}{
		"severity": "error",
		"message":  "Falha ao salvar",
		"path":     "/",
		"status":   500,
	})
	rr := do(t, h, http.MethodPost, "/api/errors/frontend", buf.String())
	assert.Equal(t, http.StatusAccepted, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/errors/frontend", `{"severity":"INFO","message":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestParseListFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/atendimentos?limit=9999&offset=-3&q=%20ana%20", nil)
	f, err := ParseListFilter(r)
	require.NoError(t, err)
	assert.Equal(t, maxLimit, f.Limit)
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, "ana", f.Query)

	r = httptest.NewRequest(http.MethodGet, "/api/atendimentos?limit=abc", nil)
	f, err = ParseListFilter(r)
	require.NoError(t, err)
	assert.Equal(t, defaultLimit, f.Limit)
}
