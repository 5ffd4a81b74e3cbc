package langdetect

import (
	"errors"
	"strings"

	"github.com/abadojack/whatlanggo"
)

var ErrUndetermined = errors.New("language could not be determined")

// Detector wraps whatlanggo trigram detection.
type Detector struct{}

func New() *Detector {
	return &Detector{}
}

func (d *Detector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrUndetermined
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "", ErrUndetermined
	}
	return code, nil
}
