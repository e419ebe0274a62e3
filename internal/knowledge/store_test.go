package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"

	"github.com/voxpersona/voxpersona/internal/log"
)

// mockEmbedder implements ai.Embedder for testing.
type mockEmbedder struct {
	embedErr    error
	returnEmpty bool
	embeddings  []float32
	callCount   int
	lastInput   string
}

func (m *mockEmbedder) Name() string { return "mock-embedder" }

func (m *mockEmbedder) Register(api.Registry) {}

func (m *mockEmbedder) Embed(_ context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	m.callCount++
	if len(req.Input) > 0 && len(req.Input[0].Content) > 0 {
		m.lastInput = req.Input[0].Content[0].Text
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.returnEmpty {
		return &ai.EmbedResponse{Embeddings: []*ai.Embedding{{Embedding: []float32{}}}}, nil
	}
	emb := m.embeddings
	if emb == nil {
		emb = []float32{0.1, 0.2, 0.3}
	}
	return &ai.EmbedResponse{Embeddings: []*ai.Embedding{{Embedding: emb}}}, nil
}

// mockQuerier records calls and serves canned rows.
type mockQuerier struct {
	upserts    []UpsertParams
	upsertErr  error
	searchRows []SearchRow
	searchErr  error
	deleted    int64
	deleteErr  error
	count      int64
}

func (m *mockQuerier) UpsertDocument(_ context.Context, arg UpsertParams) error {
	m.upserts = append(m.upserts, arg)
	return m.upsertErr
}

func (m *mockQuerier) SearchDocuments(_ context.Context, _ SearchParams) ([]SearchRow, error) {
	return m.searchRows, m.searchErr
}

func (m *mockQuerier) DeleteBySourceType(_ context.Context, _ string) (int64, error) {
	return m.deleted, m.deleteErr
}

func (m *mockQuerier) CountDocuments(_ context.Context) (int64, error) {
	return m.count, nil
}

func TestStore_Add(t *testing.T) {
	querier := &mockQuerier{}
	embedder := &mockEmbedder{}
	store, err := New(querier, embedder, log.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	doc := Document{
		ID:       "doc-1",
		Content:  "Alex builds web applications.",
		Metadata: map[string]string{"source_type": SourceTypeFile, "path": "bio.md"},
	}
	if err := store.Add(context.Background(), doc); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if embedder.lastInput != doc.Content {
		t.Errorf("embedded text = %q, want document content", embedder.lastInput)
	}
	if len(querier.upserts) != 1 {
		t.Fatalf("upsert calls = %d, want 1", len(querier.upserts))
	}
	got := querier.upserts[0]
	if got.ID != "doc-1" {
		t.Errorf("upsert ID = %q", got.ID)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted")
	}
	var meta map[string]string
	if err := json.Unmarshal(got.Metadata, &meta); err != nil {
		t.Fatalf("metadata not valid JSON: %v", err)
	}
	if meta["path"] != "bio.md" {
		t.Errorf("metadata path = %q", meta["path"])
	}
}

func TestStore_Add_Validation(t *testing.T) {
	store, _ := New(&mockQuerier{}, &mockEmbedder{}, log.NewNop())

	if err := store.Add(context.Background(), Document{Content: "x"}); err == nil {
		t.Error("expected error for missing ID")
	}
	if err := store.Add(context.Background(), Document{ID: "a"}); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestStore_Add_EmbeddingFailure(t *testing.T) {
	tests := []struct {
		name     string
		embedder *mockEmbedder
	}{
		{"embed error", &mockEmbedder{embedErr: errors.New("quota")}},
		{"empty embedding", &mockEmbedder{returnEmpty: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier := &mockQuerier{}
			store, _ := New(querier, tt.embedder, log.NewNop())
			err := store.Add(context.Background(), Document{ID: "d", Content: "c"})
			if err == nil {
				t.Fatal("expected error")
			}
			if len(querier.upserts) != 0 {
				t.Error("upsert should not run when embedding fails")
			}
		})
	}
}

func TestStore_Search(t *testing.T) {
	meta, _ := json.Marshal(map[string]string{"source_type": SourceTypeFile})
	querier := &mockQuerier{searchRows: []SearchRow{
		{ID: "a", Content: "first", Metadata: meta, CreatedAt: time.Now(), Similarity: 0.9},
		{ID: "b", Content: "second", Metadata: []byte("not json"), Similarity: 0.7},
	}}
	store, _ := New(querier, &mockEmbedder{}, log.NewNop())

	results, err := store.Search(context.Background(), "what does Alex build", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Document.ID != "a" || results[0].Similarity != 0.9 {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[0].Document.Metadata["source_type"] != SourceTypeFile {
		t.Errorf("metadata = %v", results[0].Document.Metadata)
	}
	// Bad metadata degrades to an empty map, not an error.
	if results[1].Document.Metadata == nil || len(results[1].Document.Metadata) != 0 {
		t.Errorf("malformed metadata should yield empty map, got %v", results[1].Document.Metadata)
	}
}

func TestStore_Search_Errors(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		store, _ := New(&mockQuerier{}, &mockEmbedder{embedErr: errors.New("down")}, log.NewNop())
		if _, err := store.Search(context.Background(), "q", 5); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("query failure", func(t *testing.T) {
		store, _ := New(&mockQuerier{searchErr: errors.New("db down")}, &mockEmbedder{}, log.NewNop())
		if _, err := store.Search(context.Background(), "q", 5); err == nil {
			t.Error("expected error")
		}
	})
}

func TestStore_DeleteBySourceType(t *testing.T) {
	querier := &mockQuerier{deleted: 7}
	store, _ := New(querier, &mockEmbedder{}, log.NewNop())

	n, err := store.DeleteBySourceType(context.Background(), SourceTypeFile)
	if err != nil {
		t.Fatalf("DeleteBySourceType: %v", err)
	}
	if n != 7 {
		t.Errorf("deleted = %d, want 7", n)
	}

	if _, err := store.DeleteBySourceType(context.Background(), ""); err == nil {
		t.Error("expected error for empty source type")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, &mockEmbedder{}, log.NewNop()); err == nil {
		t.Error("expected error for nil querier")
	}
	if _, err := New(&mockQuerier{}, nil, log.NewNop()); err == nil {
		t.Error("expected error for nil embedder")
	}
}
