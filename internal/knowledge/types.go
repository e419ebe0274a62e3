package knowledge

import "time"

// Source type constants for knowledge documents.
const (
	// SourceTypeFile marks chunks produced by indexing persona files.
	SourceTypeFile = "file"

	// SourceTypeSeed marks documents inserted manually, outside the
	// file indexing pipeline.
	SourceTypeSeed = "seed"
)

// Document is one chunk of persona knowledge.
type Document struct {
	ID        string            // Unique identifier
	Content   string            // Chunk text
	Metadata  map[string]string // source_type, path, chunk index
	CreatedAt time.Time
}

// Result is a single search hit with its similarity score.
type Result struct {
	Document   Document
	Similarity float32 // Cosine similarity (0-1)
}
