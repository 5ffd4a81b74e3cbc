package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// DocumentRepository persists and reads uploaded document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveIngestResult(ctx context.Context, id string, pages, chunksIndexed int) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes upload events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor turns raw document bytes into ordered pages.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) ([]domain.Page, error)
	Supports(filename string) bool
}

// LanguageDetector returns an ISO 639-1 code or an error when no language
// can be determined.
type LanguageDetector interface {
	Detect(text string) (string, error)
}

// Chunker splits one page of text into classified chunks.
type Chunker interface {
	ChunkPage(docName string, page int, text string) []domain.Chunk
}

// Embedder builds vectors, one per input text, order preserved.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore appends points and performs filtered similarity search.
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []domain.IndexedPoint) error
	Search(ctx context.Context, queryVector []float32, limit int, filter *domain.SearchFilter) ([]domain.RetrievedPoint, error)
}

// AnswerGenerator completes a chat constrained to a JSON object at
// temperature 0.
type AnswerGenerator interface {
	CompleteJSON(ctx context.Context, messages []domain.ChatMessage, maxTokens int) (string, error)
}

// PipelineObserver receives pipeline outcomes for metrics and logs.
type PipelineObserver interface {
	LanguageFallback(docName string, err error)
	RepairAttempted(succeeded bool)
	AnswerValidated(err error)
	QueryCompleted(code domain.Corpus, snippets int, duration time.Duration, err error)
	IngestCompleted(report *domain.IngestReport)
}

// NopObserver discards every observation.
type NopObserver struct{}

func (NopObserver) LanguageFallback(string, error) {}
func (NopObserver) RepairAttempted(bool) {}
func (NopObserver) AnswerValidated(error) {}
func (NopObserver) QueryCompleted(domain.Corpus, int, time.Duration, error) {}
func (NopObserver) IngestCompleted(*domain.IngestReport) {}
