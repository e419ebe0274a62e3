package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/voxpersona/voxpersona/internal/knowledge"
	"github.com/voxpersona/voxpersona/internal/log"
)

type fakeSearcher struct {
	results []knowledge.Result
	err     error
	gotK    int
	gotQ    string
}

func (f *fakeSearcher) Search(_ context.Context, query string, topK int) ([]knowledge.Result, error) {
	f.gotQ = query
	f.gotK = topK
	return f.results, f.err
}

func TestRetriever_Retrieve(t *testing.T) {
	store := &fakeSearcher{results: []knowledge.Result{
		{Document: knowledge.Document{ID: "a", Content: "first passage"}, Similarity: 0.9},
		{Document: knowledge.Document{ID: "b", Content: "second passage"}, Similarity: 0.8},
	}}
	r := NewRetriever(store, 5, log.NewNop())

	passages, err := r.Retrieve(context.Background(), "what do you build?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(passages) != 2 || passages[0] != "first passage" || passages[1] != "second passage" {
		t.Errorf("passages = %v", passages)
	}
	if store.gotK != 5 {
		t.Errorf("topK = %d, want 5", store.gotK)
	}
	if store.gotQ != "what do you build?" {
		t.Errorf("query = %q", store.gotQ)
	}
}

func TestRetriever_PropagatesFailure(t *testing.T) {
	r := NewRetriever(&fakeSearcher{err: errors.New("index down")}, 5, log.NewNop())
	if _, err := r.Retrieve(context.Background(), "q"); err == nil {
		t.Error("expected error when index is unavailable")
	}
}

func TestRetriever_EmptyResults(t *testing.T) {
	r := NewRetriever(&fakeSearcher{}, 5, log.NewNop())
	passages, err := r.Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(passages) != 0 {
		t.Errorf("passages = %v, want empty", passages)
	}
}

func TestContextBlock(t *testing.T) {
	if got := ContextBlock([]string{"a", "b", "c"}); got != "a\n\nb\n\nc" {
		t.Errorf("ContextBlock = %q", got)
	}
	if got := ContextBlock(nil); got != "" {
		t.Errorf("ContextBlock(nil) = %q, want empty", got)
	}
}
