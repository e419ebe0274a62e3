package knowledge

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/voxpersona/voxpersona/internal/log"
)

// indexTarget is the slice of Store the indexer needs.
type indexTarget interface {
	Add(ctx context.Context, doc Document) error
	DeleteBySourceType(ctx context.Context, sourceType string) (int64, error)
}

// Indexer rebuilds the file-sourced portion of the knowledge store from a
// directory of persona documents. Only .md and .txt files are indexed.
type Indexer struct {
	store     indexTarget
	dir       string
	chunkSize int
	overlap   int
	logger    log.Logger
}

// NewIndexer creates an Indexer over dir.
func NewIndexer(store indexTarget, dir string, chunkSize, overlap int, logger log.Logger) *Indexer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Indexer{store: store, dir: dir, chunkSize: chunkSize, overlap: overlap, logger: logger}
}

// Reindex wipes all file-sourced documents and re-ingests every .md and .txt
// file under the directory. Returns the number of chunks indexed. The wipe
// happens first so removed source files disappear from retrieval.
func (ix *Indexer) Reindex(ctx context.Context) (int, error) {
	info, err := os.Stat(ix.dir)
	if err != nil {
		return 0, fmt.Errorf("knowledge directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("knowledge directory %q is not a directory", ix.dir)
	}

	removed, err := ix.store.DeleteBySourceType(ctx, SourceTypeFile)
	if err != nil {
		return 0, fmt.Errorf("clearing indexed documents: %w", err)
	}
	ix.logger.Debug("cleared indexed documents", "count", removed)

	indexed := 0
	walkErr := filepath.WalkDir(ix.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := ix.indexFile(ctx, path)
		if err != nil {
			return err
		}
		indexed += n
		return nil
	})
	if walkErr != nil {
		return indexed, fmt.Errorf("indexing %q: %w", ix.dir, walkErr)
	}

	ix.logger.Info("knowledge reindex complete", "dir", ix.dir, "chunks", indexed)
	return indexed, nil
}

// indexFile splits one file and stores its chunks.
func (ix *Indexer) indexFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %q: %w", path, err)
	}

	rel, err := filepath.Rel(ix.dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)

	chunks := SplitText(string(data), ix.chunkSize, ix.overlap)
	for i, chunk := range chunks {
		doc := Document{
			ID:      documentID(rel, i),
			Content: chunk,
			Metadata: map[string]string{
				"source_type": SourceTypeFile,
				"path":        rel,
				"chunk":       strconv.Itoa(i),
			},
		}
		if err := ix.store.Add(ctx, doc); err != nil {
			return 0, fmt.Errorf("indexing chunk %d of %q: %w", i, rel, err)
		}
	}

	ix.logger.Debug("indexed file", "path", rel, "chunks", len(chunks))
	return len(chunks), nil
}

// documentID derives a stable ID from the source path and chunk index, so
// re-indexing an unchanged file upserts in place instead of duplicating.
func documentID(path string, chunk int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", path, chunk)))
	return fmt.Sprintf("%x", sum[:16])
}
