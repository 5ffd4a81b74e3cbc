package usecase

import (
	"strings"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

const (
	DefaultTopK            = 8
	DefaultSnippetMaxChars = 900
	overFetchFactor        = 3
	defaultSnippetPage     = 1
)

// DedupePoints keeps the first occurrence of every point id, preserving order.
func DedupePoints(points []domain.RetrievedPoint) []domain.RetrievedPoint {
	seen := make(map[string]struct{}, len(points))
	out := make([]domain.RetrievedPoint, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func trimPoints(points []domain.RetrievedPoint, limit int) []domain.RetrievedPoint {
	if limit <= 0 || len(points) <= limit {
		return points
	}
	return points[:limit]
}

// BuildSnippets numbers points from 1 in input order. Text is flattened to a
// single line and cut at maxChars runes, possibly mid-word.
func BuildSnippets(points []domain.RetrievedPoint, maxChars int) []domain.Snippet {
	if maxChars <= 0 {
		maxChars = DefaultSnippetMaxChars
	}
	out := make([]domain.Snippet, 0, len(points))
	for i, p := range points {
		out = append(out, domain.Snippet{
			N:       i + 1,
			Source:  p.String("doc_name"),
			Page:    p.Int("page", defaultSnippetPage),
			Snippet: truncateRunes(flattenNewlines(strings.TrimSpace(p.String("text"))), maxChars),
		})
	}
	return out
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func flattenNewlines(s string) string {
	return newlineReplacer.Replace(s)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
