package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

// FilterMode controls how a resolved corpus constrains retrieval.
type FilterMode string

const (
	// FilterStrict applies the corpus filter as a hard constraint.
	FilterStrict FilterMode = "strict"
	// FilterSoft never filters. A resolved corpus is added to the embedded
	// query as a boost phrase instead.
	FilterSoft FilterMode = "soft"
	// FilterFallback filters first and searches unfiltered when nothing matched.
	FilterFallback FilterMode = "fallback"
)

func ParseFilterMode(s string) FilterMode {
	switch FilterMode(strings.ToLower(strings.TrimSpace(s))) {
	case FilterSoft:
		return FilterSoft
	case FilterFallback:
		return FilterFallback
	default:
		return FilterStrict
	}
}

type QueryOptions struct {
	TopK            int
	SnippetMaxChars int
	FilterMode      FilterMode
}

type QueryUseCase struct {
	router      *DecisionAgent
	embedder    ports.Embedder
	vectorDB    ports.VectorStore
	synthesizer *AnswerSynthesizer
	observer    ports.PipelineObserver
	opts        QueryOptions
}

func NewQueryUseCase(
	router *DecisionAgent,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	synthesizer *AnswerSynthesizer,
	observer ports.PipelineObserver,
	opts QueryOptions,
) *QueryUseCase {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.SnippetMaxChars <= 0 {
		opts.SnippetMaxChars = DefaultSnippetMaxChars
	}
	if opts.FilterMode == "" {
		opts.FilterMode = FilterStrict
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &QueryUseCase{
		router:      router,
		embedder:    embedder,
		vectorDB:    vectorDB,
		synthesizer: synthesizer,
		observer:    observer,
		opts:        opts,
	}
}

func (uc *QueryUseCase) Route(question string) domain.DecisionResult {
	return uc.router.Decide(question)
}

func (uc *QueryUseCase) Answer(ctx context.Context, question string) (*domain.AnswerJSON, error) {
	start := time.Now()
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", errors.New("empty query"))
	}

	decision := uc.router.Decide(question)
	snippets, err := uc.retrieve(ctx, question, decision)
	if err != nil {
		uc.observer.QueryCompleted(decision.Code, 0, time.Since(start), err)
		return nil, err
	}

	answer, err := uc.synthesizer.Synthesize(ctx, question, snippets)
	uc.observer.QueryCompleted(decision.Code, len(snippets), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return answer, nil
}

func (uc *QueryUseCase) retrieve(ctx context.Context, question string, decision domain.DecisionResult) ([]domain.Snippet, error) {
	filter, boosts := decision.Filter, decision.Boosts
	if uc.opts.FilterMode == FilterSoft {
		filter, boosts = nil, softBoosts(decision)
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, RewriteQuery(question, boosts))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	points, err := uc.search(ctx, queryVector, filter)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 && filter != nil && uc.opts.FilterMode == FilterFallback {
		if points, err = uc.search(ctx, queryVector, nil); err != nil {
			return nil, err
		}
	}

	return BuildSnippets(points, uc.opts.SnippetMaxChars), nil
}

// softBoosts appends the corpus name unless a boost already names it.
func softBoosts(decision domain.DecisionResult) []string {
	if decision.Code == "" {
		return decision.Boosts
	}
	for _, b := range decision.Boosts {
		if strings.Contains(b, string(decision.Code)) {
			return decision.Boosts
		}
	}
	return append(slices.Clone(decision.Boosts), string(decision.Code))
}

func (uc *QueryUseCase) search(ctx context.Context, queryVector []float32, filter *domain.SearchFilter) ([]domain.RetrievedPoint, error) {
	raw, err := uc.vectorDB.Search(ctx, queryVector, overFetchFactor*uc.opts.TopK, filter)
	if err != nil {
		return nil, fmt.Errorf("search vector db: %w", err)
	}
	return trimPoints(DedupePoints(raw), uc.opts.TopK), nil
}
