package api

import (
	"context"
	"net/http"

	"github.com/voxpersona/voxpersona/internal/log"
)

// reindexer is the slice of knowledge.Indexer the handler needs.
type reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// Ingest handles knowledge base re-ingestion.
type Ingest struct {
	indexer reindexer
	logger  log.Logger
}

// NewIngest creates the ingest handler.
func NewIngest(indexer reindexer, logger log.Logger) *Ingest {
	return &Ingest{indexer: indexer, logger: logger}
}

// RegisterRoutes registers the ingest route. Skipped when no indexer is
// configured.
func (h *Ingest) RegisterRoutes(mux *http.ServeMux) {
	if h.indexer == nil {
		h.logger.Warn("knowledge indexer not configured, skipping ingest route")
		return
	}
	mux.HandleFunc("POST /api/ingest", h.Reindex)
}

type ingestResponse struct {
	Status            string `json:"status"`
	DocumentsIngested int    `json:"documents_ingested"`
}

// Reindex handles POST /api/ingest: rebuilds the knowledge base from the
// configured directory. Call after adding or editing persona files.
func (h *Ingest) Reindex(w http.ResponseWriter, r *http.Request) {
	count, err := h.indexer.Reindex(r.Context())
	if err != nil {
		h.logger.Error("knowledge reindex failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ingest_failed", "failed to reindex knowledge base")
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{Status: "success", DocumentsIngested: count})
}
