package corpusrules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

type ruleFile struct {
	Document []ruleEntry `yaml:"document"`
	Query    []ruleEntry `yaml:"query"`
}

type ruleEntry struct {
	Corpus   string   `yaml:"corpus"`
	Keywords []string `yaml:"keywords"`
}

// Load reads keyword tables from path. An empty path or a missing file yields
// the built-in rules; a section left out of the file keeps its defaults.
func Load(path string) (domain.CorpusRules, error) {
	defaults := domain.DefaultCorpusRules()
	if strings.TrimSpace(path) == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return domain.CorpusRules{}, fmt.Errorf("read corpus rules: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (domain.CorpusRules, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.CorpusRules{}, fmt.Errorf("decode corpus rules: %w", err)
	}

	rules := domain.DefaultCorpusRules()
	if len(file.Document) > 0 {
		document, err := convert(file.Document, "document")
		if err != nil {
			return domain.CorpusRules{}, err
		}
		rules.Document = document
	}
	if len(file.Query) > 0 {
		query, err := convert(file.Query, "query")
		if err != nil {
			return domain.CorpusRules{}, err
		}
		rules.Query = query
	}
	return rules, nil
}

func convert(entries []ruleEntry, section string) ([]domain.CorpusRule, error) {
	out := make([]domain.CorpusRule, 0, len(entries))
	for i, entry := range entries {
		corpus, err := domain.ParseCorpus(entry.Corpus)
		if err != nil {
			return nil, fmt.Errorf("%s rule %d: %w", section, i, err)
		}
		keywords := make([]string, 0, len(entry.Keywords))
		for _, k := range entry.Keywords {
			// keep surrounding spaces: " v. " relies on them
			if k = strings.ToLower(k); strings.TrimSpace(k) != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%s rule %d (%s): no keywords", section, i, corpus)
		}
		out = append(out, domain.CorpusRule{Corpus: corpus, Keywords: keywords})
	}
	return out, nil
}
