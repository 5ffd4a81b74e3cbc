package domain

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Citation page 0 means the source has no page.
type Citation struct {
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}

type AnswerJSON struct {
	Query     string     `json:"query"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}
