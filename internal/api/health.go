package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voxpersona/voxpersona/internal/log"
)

// Health handles liveness and readiness probes.
type Health struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// NewHealth creates the health handler. pool is pinged by the readiness
// probe; nil means the database is reported as not ready.
func NewHealth(pool *pgxpool.Pool, logger log.Logger) *Health {
	return &Health{pool: pool, logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *Health) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// liveness returns 200 if the process is alive.
func (h *Health) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness returns 200 only when the database answers a ping.
func (h *Health) readiness(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		http.Error(w, "database pool not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.pool.Ping(r.Context()); err != nil {
		h.logger.Error("readiness check failed", "error", err)
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
