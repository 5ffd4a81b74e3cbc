package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

func newIngestFixture(extractor *extractorFake, embedder *embedderFake, verbose bool) (*IngestUseCase, *vectorStoreFake, *observerFake) {
	store := &vectorStoreFake{}
	obs := &observerFake{}
	uc := NewIngestUseCase(extractor, chunkerFake{}, NewIndexer(embedder, store, 2), obs, verbose)
	return uc, store, obs
}

func TestIngestReconcilesFileErrors(t *testing.T) {
	extractor := &extractorFake{
		pages: map[string][]domain.Page{
			"bns.pdf":   {{Number: 1, Text: "Section 103. Murder."}, {Number: 2, Text: ""}, {Number: 3, Text: "Section 104."}},
			"notes.txt": {{Number: 1, Text: "bail notes"}},
		},
		errs: map[string]error{"broken.docx": errors.New("zip: not a valid zip file")},
	}
	uc, store, obs := newIngestFixture(extractor, &embedderFake{}, false)

	report, err := uc.Ingest(context.Background(), []domain.SourceFile{
		{Name: "bns.pdf"}, {Name: "scan.png"}, {Name: "broken.docx"}, {Name: "notes.txt"},
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if report.FilesReceived != 4 || report.FilesProcessed != 2 || len(report.Errors) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.FilesReceived != report.FilesProcessed+len(report.Errors) {
		t.Fatalf("report does not reconcile: %+v", report)
	}
	if report.Pages != 4 || report.ChunksProduced != 3 || report.ChunksIndexed != 3 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if report.Errors[0].Stage != domain.StageFormat || report.Errors[0].File != "scan.png" {
		t.Fatalf("unexpected format error %+v", report.Errors[0])
	}
	if report.Errors[1].Stage != domain.StageExtract || report.Errors[1].Causes != nil {
		t.Fatalf("unexpected extract error %+v", report.Errors[1])
	}
	if len(store.upserts) != 2 {
		t.Fatalf("expected 2 batches of size 2, got %d", len(store.upserts))
	}
	if len(obs.ingests) != 1 || obs.ingests[0] != report {
		t.Fatalf("expected report observation")
	}
}

func TestIngestReportsIndexFailure(t *testing.T) {
	extractor := &extractorFake{pages: map[string][]domain.Page{
		"a.txt": {{Number: 1, Text: "one"}},
		"b.txt": {{Number: 1, Text: "two"}},
		"c.txt": {{Number: 1, Text: "three"}},
	}}
	uc, _, _ := newIngestFixture(extractor, &embedderFake{failAt: 2}, true)

	report, err := uc.Ingest(context.Background(), []domain.SourceFile{{Name: "a.txt"}, {Name: "b.txt"}, {Name: "c.txt"}})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if report.ChunksProduced != 3 || report.ChunksIndexed != 2 {
		t.Fatalf("expected partial indexing, got %+v", report)
	}
	if len(report.Errors) != 1 || report.Errors[0].Stage != domain.StageIndex || report.Errors[0].File != "" {
		t.Fatalf("expected index stage error, got %+v", report.Errors)
	}
	if len(report.Errors[0].Causes) == 0 {
		t.Fatalf("expected cause chain in verbose mode")
	}
	if report.FilesProcessed != 3 {
		t.Fatalf("index failures are not file-scoped, got %d processed", report.FilesProcessed)
	}
}

func TestIngestRejectsEmptyBatch(t *testing.T) {
	uc, _, _ := newIngestFixture(&extractorFake{}, &embedderFake{}, false)

	_, err := uc.Ingest(context.Background(), nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCauseChain(t *testing.T) {
	root := errors.New("connection refused")
	err := fmt.Errorf("index batch 0: %w", fmt.Errorf("upsert points: %w", root))

	got := causeChain(err)
	if len(got) != 2 || got[0] != "upsert points: connection refused" || got[1] != "connection refused" {
		t.Fatalf("unexpected chain %q", got)
	}
	if causeChain(root) != nil {
		t.Fatalf("expected no causes for a leaf error")
	}
}
