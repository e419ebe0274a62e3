package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voxpersona/voxpersona/internal/log"
)

// fakeTarget records indexed documents in memory.
type fakeTarget struct {
	docs       []Document
	deletedFor []string
	addErr     error
}

func (f *fakeTarget) Add(_ context.Context, doc Document) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeTarget) DeleteBySourceType(_ context.Context, sourceType string) (int64, error) {
	f.deletedFor = append(f.deletedFor, sourceType)
	return int64(len(f.docs)), nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIndexer_Reindex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bio.md", "Alex is a web developer who loves Go.")
	writeFile(t, dir, "projects/site.txt", "Built a portfolio site with real-time chat.")
	writeFile(t, dir, "ignore.json", `{"not": "indexed"}`)

	target := &fakeTarget{}
	ix := NewIndexer(target, dir, 500, 50, log.NewNop())

	n, err := ix.Reindex(context.Background())
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if n != 2 {
		t.Fatalf("indexed chunks = %d, want 2", n)
	}
	if len(target.deletedFor) != 1 || target.deletedFor[0] != SourceTypeFile {
		t.Errorf("deletes = %v, want one delete of file source", target.deletedFor)
	}

	byPath := map[string]Document{}
	for _, d := range target.docs {
		byPath[d.Metadata["path"]] = d
	}
	if _, ok := byPath["bio.md"]; !ok {
		t.Error("bio.md not indexed")
	}
	if _, ok := byPath["projects/site.txt"]; !ok {
		t.Error("nested txt file not indexed")
	}
	if _, ok := byPath["ignore.json"]; ok {
		t.Error("json file should not be indexed")
	}

	doc := byPath["bio.md"]
	if doc.Metadata["source_type"] != SourceTypeFile {
		t.Errorf("source_type = %q", doc.Metadata["source_type"])
	}
	if doc.Metadata["chunk"] != "0" {
		t.Errorf("chunk = %q", doc.Metadata["chunk"])
	}
	if doc.ID == "" {
		t.Error("document ID is empty")
	}
}

func TestIndexer_Reindex_StableIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bio.md", "Same content both runs.")

	target := &fakeTarget{}
	ix := NewIndexer(target, dir, 500, 50, log.NewNop())

	if _, err := ix.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := target.docs[len(target.docs)-1].ID

	if _, err := ix.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}
	second := target.docs[len(target.docs)-1].ID

	if first != second {
		t.Errorf("IDs differ across runs: %q vs %q", first, second)
	}
}

func TestIndexer_Reindex_ChunksLongFiles(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("Alex answered questions about the project. ", 40)
	writeFile(t, dir, "long.md", long)

	target := &fakeTarget{}
	ix := NewIndexer(target, dir, 500, 50, log.NewNop())

	n, err := ix.Reindex(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n < 2 {
		t.Errorf("chunks = %d, want multiple for a long file", n)
	}
	seen := map[string]bool{}
	for _, d := range target.docs {
		if seen[d.ID] {
			t.Errorf("duplicate document ID %q", d.ID)
		}
		seen[d.ID] = true
	}
}

func TestIndexer_Reindex_MissingDir(t *testing.T) {
	ix := NewIndexer(&fakeTarget{}, "/nonexistent/knowledge", 500, 50, log.NewNop())
	if _, err := ix.Reindex(context.Background()); err == nil {
		t.Error("expected error for missing directory")
	}
}
