package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

type embedderFake struct {
	batches [][]string
	queries []string
	failAt  int // 1-based Embed call that fails; 0 never fails
	short   bool
	err     error
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.batches = append(f.batches, texts)
	if f.failAt > 0 && len(f.batches) == f.failAt {
		return nil, errors.New("embedding backend down")
	}
	n := len(texts)
	if f.short && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type searchCall struct {
	limit  int
	filter *domain.SearchFilter
}

type vectorStoreFake struct {
	upserts  [][]domain.IndexedPoint
	searches []searchCall
	// filtered is returned when a filter is set, unfiltered otherwise.
	filtered   []domain.RetrievedPoint
	unfiltered []domain.RetrievedPoint
	upsertErr  error
	searchErr  error
}

func (f *vectorStoreFake) EnsureCollection(context.Context) error { return nil }

func (f *vectorStoreFake) Upsert(_ context.Context, points []domain.IndexedPoint) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, points)
	return nil
}

func (f *vectorStoreFake) Search(_ context.Context, _ []float32, limit int, filter *domain.SearchFilter) ([]domain.RetrievedPoint, error) {
	f.searches = append(f.searches, searchCall{limit: limit, filter: filter})
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if filter != nil {
		return f.filtered, nil
	}
	return f.unfiltered, nil
}

type generatorFake struct {
	responses []string
	calls     [][]domain.ChatMessage
	maxTokens []int
	err       error
}

func (f *generatorFake) CompleteJSON(_ context.Context, messages []domain.ChatMessage, maxTokens int) (string, error) {
	f.calls = append(f.calls, messages)
	f.maxTokens = append(f.maxTokens, maxTokens)
	if f.err != nil {
		return "", f.err
	}
	if len(f.calls) > len(f.responses) {
		return "", errors.New("unexpected generator call")
	}
	return f.responses[len(f.calls)-1], nil
}

type extractorFake struct {
	pages map[string][]domain.Page
	errs  map[string]error
}

func (f *extractorFake) Supports(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

func (f *extractorFake) Extract(_ context.Context, filename string, _ []byte) ([]domain.Page, error) {
	if err := f.errs[filename]; err != nil {
		return nil, err
	}
	return f.pages[filename], nil
}

// chunkerFake emits one chunk per non-empty page.
type chunkerFake struct{}

func (chunkerFake) ChunkPage(docName string, page int, text string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []domain.Chunk{{
		DocName:    docName,
		Page:       page,
		ChunkIndex: 0,
		ChunkID:    domain.ChunkID(docName, page, 0),
		Text:       text,
		Corpus:     domain.CorpusUnknown,
		Lang:       "en",
	}}
}

type observerFake struct {
	ports.NopObserver
	repairs    []bool
	validated  []error
	queries    int
	queryCodes []domain.Corpus
	ingests    []*domain.IngestReport
}

func (o *observerFake) RepairAttempted(ok bool) { o.repairs = append(o.repairs, ok) }
func (o *observerFake) AnswerValidated(err error) { o.validated = append(o.validated, err) }
func (o *observerFake) IngestCompleted(r *domain.IngestReport) { o.ingests = append(o.ingests, r) }
func (o *observerFake) QueryCompleted(code domain.Corpus, _ int, _ time.Duration, _ error) {
	o.queries++
	o.queryCodes = append(o.queryCodes, code)
}

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type documentRepoFake struct {
	doc         *domain.Document
	created     *domain.Document
	createErr   error
	getErr      error
	saveErr     error
	statusCalls []statusCall
	savedPages  int
	savedChunks int
}

func (f *documentRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.created = &copyDoc
	return nil
}

func (f *documentRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.doc == nil || f.doc.ID != id {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *documentRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	return nil
}

func (f *documentRepoFake) SaveIngestResult(_ context.Context, _ string, pages, chunksIndexed int) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedPages = pages
	f.savedChunks = chunksIndexed
	return nil
}

type storageFake struct {
	savedKey  string
	savedBody string
	content   string
	saveErr   error
	openErr   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

type queueFake struct {
	documentID string
	err        error
}

func (f *queueFake) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func (f *queueFake) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func point(id, doc string, page any, text string) domain.RetrievedPoint {
	payload := map[string]any{"doc_name": doc, "text": text}
	if page != nil {
		payload["page"] = page
	}
	return domain.RetrievedPoint{ID: id, Score: 0.5, Payload: payload}
}

func makeChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			DocName:    "bns.pdf",
			Page:       1,
			ChunkIndex: i,
			ChunkID:    domain.ChunkID("bns.pdf", 1, i),
			Text:       fmt.Sprintf("chunk %d", i),
			Corpus:     domain.CorpusBNS,
			Lang:       "en",
		}
	}
	return chunks
}
