package domain

import (
	"strings"
	"testing"
)

func TestGuessDocumentPriorityOrder(t *testing.T) {
	rules := DefaultCorpusRules()

	cases := []struct {
		name    string
		docName string
		text    string
		want    Corpus
	}{
		{name: "bns band wins over constitution and judgments", docName: "notes.txt", text: "Under IPC and Article 21, State v. Kumar held", want: CorpusBNS},
		{name: "procedure", docName: "crpc_1973.pdf", text: "Arrest without warrant.", want: CorpusBNSS},
		{name: "bnss file name is not read as bns", docName: "BNSS_2023.pdf", text: "Chapter V. Arrest of persons.", want: CorpusBNSS},
		{name: "plural judgments", docName: "notes.pdf", text: "Reported judgments of the High Court", want: CorpusJudgments},
		{name: "evidence", docName: "doc.pdf", text: "Admissibility of evidence in trial.", want: CorpusBSA},
		{name: "constitution", docName: "coi.pdf", text: "Article 14 guarantees equality.", want: CorpusConstitution},
		{name: "judgment", docName: "ruling.pdf", text: "Criminal Appeal No. 12 of 2019", want: CorpusJudgments},
		{name: "unknown", docName: "memo.txt", text: "Lunch menu for Friday.", want: CorpusUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rules.GuessDocument(tc.docName, tc.text); got != tc.want {
				t.Fatalf("GuessDocument() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestGuessDocumentOnlyInspectsTextHead(t *testing.T) {
	rules := DefaultCorpusRules()
	text := strings.Repeat("x", 250) + " constitution"
	if got := rules.GuessDocument("memo.txt", text); got != CorpusUnknown {
		t.Fatalf("expected keywords past the first 200 chars to be ignored, got %s", got)
	}
}

func TestContainsWord(t *testing.T) {
	cases := []struct {
		haystack string
		keyword  string
		want     bool
	}{
		{haystack: "what does the bnss say", keyword: "bns", want: false},
		{haystack: "what does the bnss say", keyword: "bnss", want: true},
		{haystack: "bnss_2023.pdf", keyword: "bnss", want: true},
		{haystack: "bns bnss", keyword: "bns", want: true},
		{haystack: "bnss and bns", keyword: "bns", want: true},
		{haystack: "repair the wall", keyword: "air ", want: false},
		{haystack: "air 1978 sc 597", keyword: "air ", want: true},
		{haystack: "state v. kumar", keyword: " v. ", want: true},
		{haystack: "anything", keyword: "", want: false},
	}

	for _, tc := range cases {
		if got := containsWord(tc.haystack, tc.keyword); got != tc.want {
			t.Errorf("containsWord(%q, %q) = %v, want %v", tc.haystack, tc.keyword, got, tc.want)
		}
	}
}

func TestMatchQueryDistinguishesBNSSFromBNS(t *testing.T) {
	rules := DefaultCorpusRules()
	if got := rules.MatchQuery("what does the bnss say about arrest"); got != CorpusBNSS {
		t.Fatalf("MatchQuery() = %q, want %q", got, CorpusBNSS)
	}
	if got := rules.MatchQuery("what does the bns say about theft"); got != CorpusBNS {
		t.Fatalf("MatchQuery() = %q, want %q", got, CorpusBNS)
	}
}

func TestLooksLikeCase(t *testing.T) {
	rules := DefaultCorpusRules()
	if !rules.LooksLikeCase("maneka gandhi vs. union of india") {
		t.Fatalf("expected case indicator match")
	}
	if rules.LooksLikeCase("what is bail") {
		t.Fatalf("unexpected case indicator match")
	}
}

func TestParseCorpus(t *testing.T) {
	got, err := ParseCorpus(" constitution ")
	if err != nil || got != CorpusConstitution {
		t.Fatalf("ParseCorpus() = %q, %v", got, err)
	}
	if _, err := ParseCorpus("ipc"); err == nil {
		t.Fatalf("expected error for unknown corpus")
	}
}
