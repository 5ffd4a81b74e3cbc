package langdetect

import (
	"errors"
	"testing"
)

func TestDetectEnglish(t *testing.T) {
	lang, err := New().Detect("Whoever causes death by doing an act with the intention of causing death commits murder.")
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if lang != "en" {
		t.Fatalf("expected en, got %q", lang)
	}
}

func TestDetectEmptyText(t *testing.T) {
	_, err := New().Detect("   ")
	if !errors.Is(err, ErrUndetermined) {
		t.Fatalf("expected ErrUndetermined, got %v", err)
	}
}
