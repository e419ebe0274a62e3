package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the common interface satisfied by both *pgxpool.Pool and pgx.Tx.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries is the PostgreSQL implementation of Querier.
type Queries struct {
	db db
}

// NewQueries wraps a pgx pool or transaction.
func NewQueries(conn db) *Queries {
	return &Queries{db: conn}
}

func (q *Queries) UpsertDocument(ctx context.Context, arg UpsertParams) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO documents (id, content, embedding, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET content = EXCLUDED.content,
		     embedding = EXCLUDED.embedding,
		     metadata = EXCLUDED.metadata,
		     created_at = EXCLUDED.created_at`,
		arg.ID, arg.Content, arg.Embedding, arg.Metadata, arg.CreatedAt,
	)
	return err
}

func (q *Queries) SearchDocuments(ctx context.Context, arg SearchParams) ([]SearchRow, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, content, metadata, created_at,
		        1 - (embedding <=> $1) AS similarity
		 FROM documents
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		arg.QueryEmbedding, arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchRow
	for rows.Next() {
		var row SearchRow
		if err := rows.Scan(&row.ID, &row.Content, &row.Metadata, &row.CreatedAt, &row.Similarity); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (q *Queries) DeleteBySourceType(ctx context.Context, sourceType string) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM documents WHERE metadata->>'source_type' = $1`,
		sourceType,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q *Queries) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM documents`).Scan(&count)
	return count, err
}
