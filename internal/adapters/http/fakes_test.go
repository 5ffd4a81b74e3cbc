package httpadapter

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

type ingestFake struct {
	files []domain.SourceFile
	err   error
}

func (f *ingestFake) Ingest(_ context.Context, files []domain.SourceFile) (*domain.IngestReport, error) {
	f.files = files
	if f.err != nil {
		return nil, f.err
	}
	return &domain.IngestReport{
		FilesReceived:  len(files),
		FilesProcessed: len(files),
		Pages:          len(files),
		ChunksProduced: len(files),
		ChunksIndexed:  len(files),
		Errors:         []domain.IngestError{},
	}, nil
}

type queryFake struct {
	answer *domain.AnswerJSON
	err    error
	asked  string
}

func (f *queryFake) Answer(_ context.Context, question string) (*domain.AnswerJSON, error) {
	f.asked = question
	if f.err != nil {
		return nil, f.err
	}
	if f.answer != nil {
		return f.answer, nil
	}
	return &domain.AnswerJSON{Query: question, Answer: "ok", Citations: []domain.Citation{}}, nil
}

func (f *queryFake) Route(string) domain.DecisionResult {
	return domain.DecisionResult{
		Filter: &domain.SearchFilter{Corpus: domain.CorpusBNS},
		Boosts: []string{"Section 302 BNS"},
		Code:   domain.CorpusBNS,
	}
}

type uploadFake struct {
	err error
}

func (f uploadFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("empty file"))
	}

	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: "doc-1_" + filename,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type docsFake struct {
	err error
}

func (f docsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Filename: "bns.pdf", MimeType: "application/pdf", StoragePath: id + "_bns.pdf", Status: domain.StatusReady}, nil
}
