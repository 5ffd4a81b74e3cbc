package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

func newQueryFixture(store *vectorStoreFake, gen *generatorFake, mode FilterMode) (*QueryUseCase, *embedderFake, *observerFake) {
	embedder := &embedderFake{}
	obs := &observerFake{}
	uc := NewQueryUseCase(
		NewDecisionAgent(domain.DefaultCorpusRules()),
		embedder,
		store,
		NewAnswerSynthesizer(gen, 900, obs),
		obs,
		QueryOptions{FilterMode: mode},
	)
	return uc, embedder, obs
}

func TestQueryAnswerRoutesAndRetrieves(t *testing.T) {
	store := &vectorStoreFake{filtered: []domain.RetrievedPoint{
		point("p1", "bns.pdf", 3, "Whoever commits murder shall be punished with death"),
		point("p1", "bns.pdf", 3, "Whoever commits murder shall be punished with death"),
	}}
	gen := &generatorFake{responses: []string{validAnswer}}
	uc, embedder, obs := newQueryFixture(store, gen, FilterStrict)

	got, err := uc.Answer(context.Background(), "  Punishment under Section 302 IPC?  ")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Query != "q" {
		t.Fatalf("unexpected answer %+v", got)
	}
	if embedder.queries[0] != "Section 302 BNS || Punishment under Section 302 IPC?" {
		t.Fatalf("unexpected rewritten query %q", embedder.queries[0])
	}
	if len(store.searches) != 1 || store.searches[0].limit != 3*DefaultTopK {
		t.Fatalf("expected one over-fetching search, got %+v", store.searches)
	}
	if f := store.searches[0].filter; f == nil || f.Corpus != domain.CorpusBNS {
		t.Fatalf("expected BNS filter, got %+v", f)
	}
	if strings.Count(gen.calls[0][1].Content, "[1]") != 1 || strings.Contains(gen.calls[0][1].Content, "[2]") {
		t.Fatalf("expected deduplicated snippets in prompt:\n%s", gen.calls[0][1].Content)
	}
	if obs.queries != 1 || obs.queryCodes[0] != domain.CorpusBNS {
		t.Fatalf("unexpected query observations %+v", obs)
	}
}

func TestQueryAnswerTrimsToTopK(t *testing.T) {
	var hits []domain.RetrievedPoint
	for i := 0; i < 20; i++ {
		hits = append(hits, point(string(rune('a'+i)), "doc.pdf", 1, "text"))
	}
	store := &vectorStoreFake{unfiltered: hits}
	gen := &generatorFake{responses: []string{validAnswer}}
	uc, _, _ := newQueryFixture(store, gen, FilterStrict)

	if _, err := uc.Answer(context.Background(), "what is bail"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	prompt := gen.calls[0][1].Content
	if !strings.Contains(prompt, "[8] ") || strings.Contains(prompt, "[9] ") {
		t.Fatalf("expected exactly %d snippets:\n%s", DefaultTopK, prompt)
	}
	if store.searches[0].filter != nil {
		t.Fatalf("expected no filter without a corpus cue")
	}
}

func TestQueryAnswerSoftModeNeverFilters(t *testing.T) {
	store := &vectorStoreFake{}
	gen := &generatorFake{responses: []string{`{"query":"q","answer":"` + InsufficientInformation + `","citations":[]}`}}
	uc, _, _ := newQueryFixture(store, gen, FilterSoft)

	if _, err := uc.Answer(context.Background(), "Article 21"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(store.searches) != 1 || store.searches[0].filter != nil {
		t.Fatalf("expected one unfiltered search, got %+v", store.searches)
	}
}

func TestQueryAnswerSoftModeBoostsKeywordOnlyCorpus(t *testing.T) {
	store := &vectorStoreFake{}
	gen := &generatorFake{responses: []string{`{"query":"q","answer":"` + InsufficientInformation + `","citations":[]}`}}
	uc, embedder, _ := newQueryFixture(store, gen, FilterSoft)

	if _, err := uc.Answer(context.Background(), "what does the bnss say about arrest"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if embedder.queries[0] != "BNSS || what does the bnss say about arrest" {
		t.Fatalf("unexpected rewritten query %q", embedder.queries[0])
	}
	if store.searches[0].filter != nil {
		t.Fatalf("soft mode must not filter, got %+v", store.searches[0].filter)
	}
}

func TestSoftBoostsKeepsExistingCorpusPhrase(t *testing.T) {
	decision := domain.DecisionResult{Boosts: []string{"Section 302 BNS"}, Code: domain.CorpusBNS}
	if got := softBoosts(decision); len(got) != 1 || got[0] != "Section 302 BNS" {
		t.Fatalf("softBoosts() = %v", got)
	}
	if got := softBoosts(domain.DecisionResult{Boosts: []string{}}); len(got) != 0 {
		t.Fatalf("expected no boosts without a corpus, got %v", got)
	}
}

func TestQueryAnswerFallbackSearchesUnfiltered(t *testing.T) {
	store := &vectorStoreFake{unfiltered: []domain.RetrievedPoint{point("p1", "coi.pdf", 9, "Protection of life")}}
	gen := &generatorFake{responses: []string{validAnswer}}
	uc, _, _ := newQueryFixture(store, gen, FilterFallback)

	if _, err := uc.Answer(context.Background(), "Article 21"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(store.searches) != 2 {
		t.Fatalf("expected filtered then unfiltered search, got %+v", store.searches)
	}
	if store.searches[0].filter == nil || store.searches[1].filter != nil {
		t.Fatalf("unexpected filter sequence %+v", store.searches)
	}
}

func TestQueryAnswerStrictModeKeepsEmptyResult(t *testing.T) {
	store := &vectorStoreFake{unfiltered: []domain.RetrievedPoint{point("p1", "x.pdf", 1, "t")}}
	gen := &generatorFake{responses: []string{`{"query":"q","answer":"` + InsufficientInformation + `","citations":[]}`}}
	uc, _, _ := newQueryFixture(store, gen, FilterStrict)

	got, err := uc.Answer(context.Background(), "Article 21")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Answer != InsufficientInformation || len(store.searches) != 1 {
		t.Fatalf("unexpected result %+v after %d searches", got, len(store.searches))
	}
}

func TestQueryAnswerEmptyQuestion(t *testing.T) {
	uc, embedder, _ := newQueryFixture(&vectorStoreFake{}, &generatorFake{}, FilterStrict)

	_, err := uc.Answer(context.Background(), "   ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(embedder.queries) != 0 {
		t.Fatalf("expected no embedding for empty query")
	}
}

func TestQueryAnswerSearchError(t *testing.T) {
	store := &vectorStoreFake{searchErr: errors.New("qdrant down")}
	uc, _, obs := newQueryFixture(store, &generatorFake{}, FilterStrict)

	_, err := uc.Answer(context.Background(), "bail")
	if err == nil || !strings.Contains(err.Error(), "search vector db") {
		t.Fatalf("expected search error, got %v", err)
	}
	if obs.queries != 1 {
		t.Fatalf("expected failed query to be observed")
	}
}

func TestParseFilterMode(t *testing.T) {
	cases := map[string]FilterMode{"": FilterStrict, "SOFT": FilterSoft, "fallback": FilterFallback, "bogus": FilterStrict}
	for in, want := range cases {
		if got := ParseFilterMode(in); got != want {
			t.Fatalf("ParseFilterMode(%q) = %q, want %q", in, got, want)
		}
	}
}
