package usecase

import (
	"strings"
	"text/template"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

const InsufficientInformation = "Insufficient information in provided sources."

const answerSystemPrompt = `You are a legal assistant for Indian law.
Answer only from the numbered snippets provided by the user.
If the snippets do not contain the answer, reply exactly: "` + InsufficientInformation + `"
Write the answer in the language of the question and add inline markers such as [1][2] that refer to snippet numbers.
Return ONLY a JSON object with the keys "query", "answer" and "citations".
"citations" is an array of objects {"source", "page", "snippet"}; "snippet" must repeat the full text of the cited numbered snippet.
"page" must always be an integer; use 0 when the snippet has no page.
Do not write anything outside the JSON object.`

const (
	repairSystemPrompt = "You output JSON only. Do not include any extra text."
	repairUserPrefix   = "Repair the following into valid JSON only, keeping the same keys and content:\n\n"
)

var answerUserTemplate = template.Must(template.New("answer_user").Parse(`Question:
{{ .Question }}

Snippets:
{{ range .Snippets -}}
[{{ .N }}] ({{ .Source }}, p.{{ .Page }}): {{ .Snippet }}
{{ end }}
Return JSON only.
`))

func buildAnswerMessages(question string, snippets []domain.Snippet) ([]domain.ChatMessage, error) {
	var b strings.Builder
	err := answerUserTemplate.Execute(&b, struct {
		Question string
		Snippets []domain.Snippet
	}{Question: question, Snippets: snippets})
	if err != nil {
		return nil, err
	}
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: answerSystemPrompt},
		{Role: domain.RoleUser, Content: b.String()},
	}, nil
}

func buildRepairMessages(raw string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: repairSystemPrompt},
		{Role: domain.RoleUser, Content: repairUserPrefix + raw},
	}
}
