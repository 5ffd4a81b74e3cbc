package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

type extractFunc func(data []byte) ([]domain.Page, error)

// Extractor dispatches on the file extension. Pages are numbered from 1.
type Extractor struct {
	byExt map[string]extractFunc
}

func New() *Extractor {
	return &Extractor{byExt: map[string]extractFunc{
		".pdf":  extractPDF,
		".docx": extractDOCX,
		".xlsx": extractXLSX,
		".txt":  extractPlainText,
		".md":   extractPlainText,
	}}
}

func (e *Extractor) Supports(filename string) bool {
	_, ok := e.byExt[extension(filename)]
	return ok
}

// Extensions lists the supported extensions in sorted order.
func (e *Extractor) Extensions() []string {
	out := make([]string, 0, len(e.byExt))
	for ext := range e.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) ([]domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fn, ok := e.byExt[extension(filename)]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "extract", fmt.Errorf("unsupported file type: %s", filename))
	}
	pages, err := fn(data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	return pages, nil
}

func extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func singlePage(text string) []domain.Page {
	return []domain.Page{{Number: 1, Text: strings.TrimSpace(text)}}
}
