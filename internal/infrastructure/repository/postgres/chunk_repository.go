package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/askcampus/askcampus/internal/core/domain"
)

// ChunkRepository is the durable store the in-memory indexes rebuild from.
// Embeddings live in a JSONB column; similarity math happens in process, so
// the database only needs faithful storage and a fast full scan.
type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceForDocument swaps a document's chunk set atomically. Re-processing
// a document never leaves a mix of old and new chunks visible.
func (r *ChunkRepository) ReplaceForDocument(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}

	for _, c := range chunks {
		embedding, err := json.Marshal(c.Embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO chunks (id, document_id, source, chunk_index, content, embedding, embed_model)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, c.ID, c.DocumentID, c.Source, c.ChunkIndex, c.Text, embedding, c.EmbedModel); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunk tx: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ListAll(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, source, chunk_index, content, embedding, embed_model
FROM chunks
ORDER BY document_id, chunk_index
`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var embedding []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Source, &c.ChunkIndex, &c.Text, &embedding, &c.EmbedModel); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal(embedding, &c.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding for %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}

func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}
