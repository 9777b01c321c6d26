package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/atendimentos/backend/internal/metrics"
	"github.com/gorilla/mux"
)

// Metrics observes request durations labelled by the matched route template.
// Register it with (*mux.Router).Use so the route is known.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.Status())).
			Observe(time.Since(start).Seconds())
	})
}
