package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

const DefaultIndexBatchSize = 64

// Indexer embeds chunks and appends them to the vector store. Re-indexing the
// same chunks creates new points; nothing is updated in place.
type Indexer struct {
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	batchSize int
	newID     func() string
}

func NewIndexer(embedder ports.Embedder, vectorDB ports.VectorStore, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultIndexBatchSize
	}
	return &Indexer{
		embedder:  embedder,
		vectorDB:  vectorDB,
		batchSize: batchSize,
		newID:     uuid.NewString,
	}
}

// Index processes batches sequentially. On failure the returned result still
// counts the points of batches that were already upserted.
func (ix *Indexer) Index(ctx context.Context, chunks []domain.Chunk) (domain.IndexResult, error) {
	var result domain.IndexResult
	for start := 0; start < len(chunks); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := ix.indexBatch(ctx, chunks[start:end]); err != nil {
			return result, fmt.Errorf("index batch %d (chunks %d-%d): %w", result.Batches, start, end-1, err)
		}
		result.Indexed += end - start
		result.Batches++
	}
	return result, nil
}

func (ix *Indexer) indexBatch(ctx context.Context, batch []domain.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(batch) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(batch)),
		)
	}

	points := make([]domain.IndexedPoint, len(batch))
	for i, c := range batch {
		points[i] = domain.IndexedPoint{
			ID:     ix.newID(),
			Vector: vectors[i],
			Chunk:  c,
		}
	}

	if err := ix.vectorDB.Upsert(ctx, points); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}
