package api

import (
	"net/http"
	"strings"

	"github.com/atendimentos/backend/internal/metrics"
	"github.com/atendimentos/backend/internal/middleware"
	"go.uber.org/zap"
)

const maxFrontendMessage = 2000

type FrontendErrorIngestRequest struct {
	RequestID *string `json:"request_id"`
	Severity  string  `json:"severity"` // WARN|ERROR
	Kind      string  `json:"kind"`
	Message   string  `json:"message"`
	Stack     *string `json:"stack,omitempty"`
	Path      *string `json:"path,omitempty"`
	Status    *int    `json:"status,omitempty"`
}

// IngestFrontendError registra no log erros reportados pelo navegador (sem persistência).
func (h *Handler) IngestFrontendError(w http.ResponseWriter, r *http.Request) {
	var req FrontendErrorIngestRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	sev := strings.ToUpper(strings.TrimSpace(req.Severity))
	if sev != "WARN" && sev != "ERROR" {
		writeError(w, http.StatusBadRequest, "severity inválida")
		return
	}
	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = "FRONTEND_ERROR"
	}
	msg := truncate(strings.TrimSpace(req.Message), maxFrontendMessage)
	if msg == "" {
		msg = "frontend error"
	}

	rid := middleware.RequestIDFromContext(r.Context())
	if req.RequestID != nil && strings.TrimSpace(*req.RequestID) != "" {
		rid = strings.TrimSpace(*req.RequestID)
	}
	fields := []zap.Field{
		zap.String("source", "FRONTEND"),
		zap.String("request_id", rid),
		zap.String("kind", kind),
		zap.String("message", msg),
	}
	if req.Path != nil {
		fields = append(fields, zap.String("frontend_path", strings.TrimSpace(*req.Path)))
	}
	if req.Status != nil {
		fields = append(fields, zap.Int("status", *req.Status))
	}
	if req.Stack != nil {
		fields = append(fields, zap.String("stack", truncate(*req.Stack, 4*maxFrontendMessage)))
	}
	if sev == "ERROR" {
		h.Log.Error("frontend error", fields...)
	} else {
		h.Log.Warn("frontend error", fields...)
	}
	metrics.FrontendErrors.WithLabelValues(sev).Inc()

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "ok"})
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
