package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/atendimentos/backend/internal/atendimento"
	"github.com/atendimentos/backend/internal/middleware"
	"github.com/atendimentos/backend/internal/repo"
	"github.com/atendimentos/backend/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	Svc *service.Atendimentos
	Log *zap.Logger
}

// Register mounts the health probes and the /api routes on r, and answers unmatched
// requests with JSON 404/405. 405 only works from the root router: a subrouter
// with its own NotFoundHandler swallows the method mismatch.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.Ready).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/atendimentos", h.ListAtendimentos).Methods(http.MethodGet)
	apiRouter.HandleFunc("/atendimento", h.CreateAtendimento).Methods(http.MethodPost)
	apiRouter.HandleFunc("/atendimento/{id}", h.GetAtendimento).Methods(http.MethodGet)
	apiRouter.HandleFunc("/atendimento/{id}", h.UpdateAtendimento).Methods(http.MethodPut)
	apiRouter.HandleFunc("/atendimento/{id}", h.DeleteAtendimento).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/tipos", h.ListTipos).Methods(http.MethodGet)
	apiRouter.HandleFunc("/errors/frontend", h.IngestFrontendError).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "rota não encontrada")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "método não permitido")
	})
}

// MountFrontend serves fe for GET/HEAD on every path outside /api, so unknown API
// paths still get the JSON 404. Register it after Register and any other route.
func MountFrontend(r *mux.Router, fe http.Handler) {
	r.PathPrefix("/").
		MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
			return req.URL.Path != "/api" && !strings.HasPrefix(req.URL.Path, "/api/")
		}).
		Methods(http.MethodGet, http.MethodHead).
		Handler(fe)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON body of at most maxBodyBytes into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// serviceError maps service errors to responses; unexpected ones are logged and hidden.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *atendimento.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "dados inválidos",
			"fields": verr.Fields,
		})
	case errors.Is(err, repo.ErrConstraint):
		writeError(w, http.StatusBadRequest, "dados inválidos")
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "atendimento não encontrado")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "tempo de resposta excedido")
	default:
		rid := middleware.RequestIDFromContext(r.Context())
		h.Log.Error("request failed",
			zap.String("request_id", rid),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":      "internal",
			"request_id": rid,
		})
	}
}
