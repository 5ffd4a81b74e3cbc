package extractor

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// extractPlainText drops invalid UTF-8 sequences. A NUL byte marks the file as
// binary and rejects it.
func extractPlainText(data []byte) ([]domain.Page, error) {
	data = trimBOM(data)
	text := string(data)
	if !utf8.Valid(data) {
		text = strings.ToValidUTF8(text, "")
		slog.Debug("plaintext_invalid_utf8_dropped", "bytes_before", len(data), "bytes_after", len(text))
	}
	if strings.IndexByte(text, 0) >= 0 {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "extract text", errors.New("text file contains binary data"))
	}
	return singlePage(text), nil
}

func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
