package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxpersona/voxpersona/internal/knowledge"
	"github.com/voxpersona/voxpersona/internal/log"
)

// searcher is the slice of knowledge.Store the retriever needs.
type searcher interface {
	Search(ctx context.Context, query string, topK int) ([]knowledge.Result, error)
}

// Retriever fetches the passages most relevant to a search query.
type Retriever struct {
	store  searcher
	topK   int
	logger log.Logger
}

// NewRetriever creates a Retriever returning at most topK passages.
func NewRetriever(store searcher, topK int, logger log.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Retriever{store: store, topK: topK, logger: logger}
}

// Retrieve returns ranked passage texts for query. Fewer than topK results
// is normal for a small knowledge base; zero results yields an empty slice,
// not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]string, error) {
	results, err := r.store.Search(ctx, query, r.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving passages: %w", err)
	}

	passages := make([]string, 0, len(results))
	for _, res := range results {
		passages = append(passages, res.Document.Content)
	}
	r.logger.Debug("retrieved passages", "count", len(passages), "query_length", len(query))
	return passages, nil
}

// ContextBlock joins passages into the prompt's context slot, separated by
// blank lines. Empty input produces an empty block.
func ContextBlock(passages []string) string {
	return strings.Join(passages, "\n\n")
}
