package chunking

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

const (
	DefaultTargetTokens     = 450
	DefaultOverlapSentences = 1
	DefaultLanguage         = "en"
)

var sentenceBoundary = regexp.MustCompile(`[.?!]\s+`)

// SentenceChunker packs sentences into chunks bounded by an estimated token
// count, carrying trailing sentences forward as overlap.
type SentenceChunker struct {
	TargetTokens     int
	OverlapSentences int

	rules    domain.CorpusRules
	detector ports.LanguageDetector
	observer ports.PipelineObserver
}

func NewSentenceChunker(
	targetTokens, overlapSentences int,
	rules domain.CorpusRules,
	detector ports.LanguageDetector,
	observer ports.PipelineObserver,
) *SentenceChunker {
	if targetTokens <= 0 {
		targetTokens = DefaultTargetTokens
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &SentenceChunker{
		TargetTokens:     targetTokens,
		OverlapSentences: overlapSentences,
		rules:            rules,
		detector:         detector,
		observer:         observer,
	}
}

func (c *SentenceChunker) ChunkPage(docName string, page int, text string) []domain.Chunk {
	groups := c.pack(splitSentences(text))
	out := make([]domain.Chunk, 0, len(groups))
	for idx, group := range groups {
		chunkText := strings.Join(group, " ")
		out = append(out, domain.Chunk{
			DocName:    docName,
			Page:       page,
			ChunkIndex: idx,
			ChunkID:    domain.ChunkID(docName, page, idx),
			Text:       chunkText,
			Corpus:     c.rules.GuessDocument(docName, chunkText),
			Lang:       c.detectLanguage(docName, chunkText),
		})
	}
	return out
}

// pack groups sentences. A group is emitted only when it holds at least one
// sentence not already emitted, so overlap never produces a seed-only chunk.
// The seed is kept even when seed plus the next sentence exceeds the target;
// only an oversized sentence starts a chunk without overlap.
func (c *SentenceChunker) pack(sentences []string) [][]string {
	var (
		groups [][]string
		cur    []string
		curLen int
		fresh  int
	)
	emit := func(group []string) {
		groups = append(groups, append([]string(nil), group...))
	}

	for _, s := range sentences {
		n := estimateTokens(s)

		if n > c.TargetTokens {
			if fresh > 0 {
				emit(cur)
			}
			emit([]string{s})
			cur, curLen, fresh = nil, 0, 0
			continue
		}

		if fresh > 0 && curLen+n > c.TargetTokens {
			emit(cur)
			cur = c.seed(cur)
			curLen = countTokens(cur)
			fresh = 0
		}

		cur = append(cur, s)
		curLen += n
		fresh++
	}

	if fresh > 0 {
		emit(cur)
	}
	return groups
}

func (c *SentenceChunker) seed(group []string) []string {
	if c.OverlapSentences == 0 || len(group) == 0 {
		return nil
	}
	start := len(group) - c.OverlapSentences
	if start < 0 {
		start = 0
	}
	return append([]string(nil), group[start:]...)
}

func (c *SentenceChunker) detectLanguage(docName, text string) string {
	if c.detector == nil {
		return DefaultLanguage
	}
	lang, err := c.detector.Detect(text)
	if err != nil || lang == "" {
		slog.Debug("language_fallback", "doc_name", docName, "error", err)
		c.observer.LanguageFallback(docName, err)
		return DefaultLanguage
	}
	return lang
}

func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// keep the punctuation mark with its sentence
		out = appendTrimmed(out, text[last:loc[0]+1])
		last = loc[1]
	}
	return appendTrimmed(out, text[last:])
}

func appendTrimmed(dst []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return dst
	}
	return append(dst, s)
}

func estimateTokens(s string) int {
	n := len(strings.Fields(s))
	if n < 1 {
		return 1
	}
	return n
}

func countTokens(sentences []string) int {
	total := 0
	for _, s := range sentences {
		total += estimateTokens(s)
	}
	return total
}
