package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Corpus string

const (
	CorpusBNS          Corpus = "BNS"
	CorpusBNSS         Corpus = "BNSS"
	CorpusBSA          Corpus = "BSA"
	CorpusConstitution Corpus = "Constitution"
	CorpusJudgments    Corpus = "Judgments"
	CorpusUnknown      Corpus = "Unknown"
)

// ParseCorpus accepts corpus names case-insensitively.
func ParseCorpus(s string) (Corpus, error) {
	for _, c := range []Corpus{CorpusBNS, CorpusBNSS, CorpusBSA, CorpusConstitution, CorpusJudgments, CorpusUnknown} {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown corpus %q", s)
}

// CorpusRule maps a set of lowercase keywords to a corpus. Rules are evaluated
// in slice order and the first rule with a matching keyword wins. Keywords
// match whole words only: "bns" does not match inside "bnss".
type CorpusRule struct {
	Corpus   Corpus
	Keywords []string
}

type CorpusRules struct {
	// Document rules classify chunks by doc name and chunk head.
	Document []CorpusRule
	// Query rules are the keyword fallback of the router. The Judgments rule
	// doubles as the case-law indicator list.
	Query []CorpusRule
}

const corpusGuessPrefixChars = 200

func DefaultCorpusRules() CorpusRules {
	return CorpusRules{
		Document: []CorpusRule{
			{Corpus: CorpusBNS, Keywords: []string{"bns", "nyaya", "ipc"}},
			{Corpus: CorpusBNSS, Keywords: []string{"bnss", "crpc", "procedure", "procedural"}},
			{Corpus: CorpusBSA, Keywords: []string{"bsa", "evidence", "iea"}},
			{Corpus: CorpusConstitution, Keywords: []string{"constitution", "constitutional", "article "}},
			{Corpus: CorpusJudgments, Keywords: []string{" v. ", "scc", "air ", "judgment", "judgments", "appeal", "appeals"}},
		},
		Query: []CorpusRule{
			{Corpus: CorpusBNS, Keywords: []string{"bns", "ipc"}},
			{Corpus: CorpusBNSS, Keywords: []string{"bnss", "crpc", "procedure", "procedural"}},
			{Corpus: CorpusBSA, Keywords: []string{"bsa", "evidence", "iea"}},
			{Corpus: CorpusConstitution, Keywords: []string{"constitution", "constitutional", "fundamental rights", "article "}},
			{Corpus: CorpusJudgments, Keywords: []string{" v. ", "vs.", "judgment", "judgments", "appeal", "appeals", "petition", "petitions", "scc", "air "}},
		},
	}
}

// GuessDocument classifies a chunk. It never returns an empty corpus.
func (r CorpusRules) GuessDocument(docName, text string) Corpus {
	head := []rune(text)
	if len(head) > corpusGuessPrefixChars {
		head = head[:corpusGuessPrefixChars]
	}
	haystack := strings.ToLower(docName + " " + string(head))
	if c := firstMatch(r.Document, haystack); c != "" {
		return c
	}
	return CorpusUnknown
}

// MatchQuery runs the keyword fallback over an already lowercased query.
// Empty result means no corpus could be inferred.
func (r CorpusRules) MatchQuery(lowerQuery string) Corpus {
	return firstMatch(r.Query, lowerQuery)
}

// LooksLikeCase reports whether the query carries case-law indicators.
func (r CorpusRules) LooksLikeCase(lowerQuery string) bool {
	for _, rule := range r.Query {
		if rule.Corpus == CorpusJudgments {
			return containsAny(lowerQuery, rule.Keywords)
		}
	}
	return false
}

func firstMatch(rules []CorpusRule, haystack string) Corpus {
	for _, rule := range rules {
		if containsAny(haystack, rule.Keywords) {
			return rule.Corpus
		}
	}
	return ""
}

func containsAny(haystack string, keywords []string) bool {
	for _, k := range keywords {
		if containsWord(haystack, k) {
			return true
		}
	}
	return false
}

// containsWord reports whether keyword occurs in haystack without letters or
// digits glued to its ends. Ends that are not word runes, like the spaces in
// " v. ", match anywhere.
func containsWord(haystack, keyword string) bool {
	if keyword == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(keyword)
	last, _ := utf8.DecodeLastRuneInString(keyword)
	checkLeft, checkRight := isWordRune(first), isWordRune(last)

	for from := 0; from < len(haystack); {
		i := strings.Index(haystack[from:], keyword)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(keyword)

		left := true
		if checkLeft && start > 0 {
			r, _ := utf8.DecodeLastRuneInString(haystack[:start])
			left = !isWordRune(r)
		}
		right := true
		if checkRight && end < len(haystack) {
			r, _ := utf8.DecodeRuneInString(haystack[end:])
			right = !isWordRune(r)
		}
		if left && right {
			return true
		}
		_, size := utf8.DecodeRuneInString(haystack[start:])
		from = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
