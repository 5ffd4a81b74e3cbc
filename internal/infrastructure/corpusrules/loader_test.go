package corpusrules

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	rules, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(rules, domain.DefaultCorpusRules()) {
		t.Fatalf("expected default rules")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	rules, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rules.Document) != len(domain.DefaultCorpusRules().Document) {
		t.Fatalf("expected default document rules")
	}
}

func TestLoadOverridesQueryRulesOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
query:
  - corpus: bsa
    keywords: [Witness, " v. "]
  - corpus: Judgments
    keywords: [ruling]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(rules.Document, domain.DefaultCorpusRules().Document) {
		t.Fatalf("expected document rules to keep defaults")
	}
	if got := rules.MatchQuery("hostile witness testimony"); got != domain.CorpusBSA {
		t.Fatalf("expected BSA, got %q", got)
	}
	if !rules.LooksLikeCase("the ruling stands") {
		t.Fatalf("expected overridden case indicators")
	}
}

func TestParseRejectsUnknownCorpus(t *testing.T) {
	_, err := Parse([]byte("document:\n  - corpus: tax\n    keywords: [gst]\n"))
	if err == nil {
		t.Fatalf("expected error for unknown corpus")
	}
}
