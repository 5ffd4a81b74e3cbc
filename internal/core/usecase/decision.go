package usecase

import (
	"regexp"
	"strings"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

var (
	sectionRef = regexp.MustCompile(`\b(?:section|sec)\.?\s*(\d+[a-z]?)(?:\s*(?:of\s+(?:the\s+)?)?(bnss|bns|ipc|crpc|bsa|iea)\b)?`)
	articleRef = regexp.MustCompile(`\barticle\s*(\d+[a-z]?)`)
)

// legacyCodes maps explicit statute codes in a section reference to the
// current corpus.
var legacyCodes = map[string]domain.Corpus{
	"ipc":  domain.CorpusBNS,
	"bns":  domain.CorpusBNS,
	"crpc": domain.CorpusBNSS,
	"bnss": domain.CorpusBNSS,
	"iea":  domain.CorpusBSA,
	"bsa":  domain.CorpusBSA,
}

const rewriteSeparator = " || "

type DecisionAgent struct {
	rules domain.CorpusRules
}

func NewDecisionAgent(rules domain.CorpusRules) *DecisionAgent {
	return &DecisionAgent{rules: rules}
}

// Decide detects statute references and infers the target corpus. A resolved
// corpus becomes a hard filter; a numbered reference only becomes a boost.
func (a *DecisionAgent) Decide(query string) domain.DecisionResult {
	q := strings.ToLower(query)

	var (
		code      domain.Corpus
		sectionNo string
		articleNo string
	)
	if m := sectionRef.FindStringSubmatch(q); m != nil {
		sectionNo = m[1]
		code = NormalizeCode(m[2])
	} else if m := articleRef.FindStringSubmatch(q); m != nil {
		articleNo = m[1]
		code = domain.CorpusConstitution
	}

	if code == "" {
		code = a.rules.MatchQuery(q)
	}

	boosts := []string{}
	switch {
	case sectionNo != "" && code != "":
		boosts = append(boosts, "Section "+sectionNo+" "+string(code))
	case sectionNo != "":
		boosts = append(boosts, "Section "+sectionNo)
	case articleNo != "":
		boosts = append(boosts, "Article "+articleNo+" Constitution")
	}

	result := domain.DecisionResult{Boosts: boosts, Code: code}
	if code != "" {
		result.Filter = &domain.SearchFilter{Corpus: code}
	}
	return result
}

// NormalizeCode maps legacy and current code names to a corpus; unknown codes
// yield an empty corpus.
func NormalizeCode(code string) domain.Corpus {
	return legacyCodes[strings.ToLower(strings.TrimSpace(code))]
}

// RewriteQuery prepends boost phrases to the query that gets embedded.
func RewriteQuery(original string, boosts []string) string {
	if len(boosts) == 0 {
		return original
	}
	return strings.Join(boosts, " ") + rewriteSeparator + original
}
