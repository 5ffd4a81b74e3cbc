package ports

import (
	"context"
	"io"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// LegalIngestor synchronously extracts, chunks and indexes a batch of files.
type LegalIngestor interface {
	Ingest(ctx context.Context, files []domain.SourceFile) (*domain.IngestReport, error)
}

// LegalQueryService answers a question from indexed sources.
type LegalQueryService interface {
	Answer(ctx context.Context, question string) (*domain.AnswerJSON, error)
	Route(question string) domain.DecisionResult
}

// DocumentUploader stores a document and schedules asynchronous ingestion.
type DocumentUploader interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the read model for uploaded document state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor ingests a previously uploaded document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
