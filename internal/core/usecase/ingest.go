package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

// IngestUseCase extracts, chunks and indexes a batch of uploaded files in the
// request path. File-scoped failures are reported, not returned.
type IngestUseCase struct {
	extractor     ports.TextExtractor
	chunker       ports.Chunker
	indexer       *Indexer
	observer      ports.PipelineObserver
	verboseErrors bool
}

func NewIngestUseCase(
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	indexer *Indexer,
	observer ports.PipelineObserver,
	verboseErrors bool,
) *IngestUseCase {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &IngestUseCase{
		extractor:     extractor,
		chunker:       chunker,
		indexer:       indexer,
		observer:      observer,
		verboseErrors: verboseErrors,
	}
}

func (uc *IngestUseCase) Ingest(ctx context.Context, files []domain.SourceFile) (*domain.IngestReport, error) {
	if len(files) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest", errors.New("no files"))
	}

	report := &domain.IngestReport{
		FilesReceived: len(files),
		Errors:        []domain.IngestError{},
	}
	var chunks []domain.Chunk

	for _, file := range files {
		if !uc.extractor.Supports(file.Name) {
			err := domain.WrapError(domain.ErrUnsupportedFormat, "ingest", fmt.Errorf("unsupported file type: %s", file.Name))
			report.Errors = append(report.Errors, uc.ingestError(file.Name, domain.StageFormat, err))
			continue
		}

		pages, err := uc.extractor.Extract(ctx, file.Name, file.Data)
		if err != nil {
			slog.Warn("ingest_extract_failed", "file", file.Name, "error", err)
			report.Errors = append(report.Errors, uc.ingestError(file.Name, domain.StageExtract, err))
			continue
		}

		report.FilesProcessed++
		report.Pages += len(pages)
		chunks = append(chunks, chunkPages(uc.chunker, file.Name, pages)...)
	}
	report.ChunksProduced = len(chunks)

	result, err := uc.indexer.Index(ctx, chunks)
	report.ChunksIndexed = result.Indexed
	if err != nil {
		slog.Error("ingest_index_failed", "chunks_produced", report.ChunksProduced, "chunks_indexed", result.Indexed, "error", err)
		report.Errors = append(report.Errors, uc.ingestError("", domain.StageIndex, err))
	}

	slog.Info("ingest_completed",
		"files_received", report.FilesReceived,
		"files_processed", report.FilesProcessed,
		"chunks_indexed", report.ChunksIndexed,
		"errors", len(report.Errors),
	)
	uc.observer.IngestCompleted(report)
	return report, nil
}

func (uc *IngestUseCase) ingestError(file string, stage domain.IngestStage, err error) domain.IngestError {
	out := domain.IngestError{File: file, Stage: stage, Message: err.Error()}
	if uc.verboseErrors {
		out.Causes = causeChain(err)
	}
	return out
}

func chunkPages(chunker ports.Chunker, docName string, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	for _, page := range pages {
		chunks = append(chunks, chunker.ChunkPage(docName, page.Number, page.Text)...)
	}
	return chunks
}

// causeChain lists the messages of every wrapped error below err, depth first.
func causeChain(err error) []string {
	var out []string
	var walk func(error)
	walk = func(e error) {
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				out = append(out, inner.Error())
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				out = append(out, inner.Error())
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}
