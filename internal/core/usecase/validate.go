package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

var citationMarker = regexp.MustCompile(`\[(\d+)\]`)

var answerSchema = openapi3.NewObjectSchema().
	WithProperty("query", openapi3.NewStringSchema()).
	WithProperty("answer", openapi3.NewStringSchema()).
	WithProperty("citations", openapi3.NewArraySchema().WithItems(
		openapi3.NewObjectSchema().
			WithProperty("source", openapi3.NewStringSchema()).
			WithProperty("page", openapi3.NewIntegerSchema().WithMin(0)).
			WithProperty("snippet", openapi3.NewStringSchema()).
			WithRequired([]string{"source", "snippet"}),
	)).
	WithRequired([]string{"query", "answer", "citations"})

// ValidateAnswer enforces the answer schema on a decoded model response and
// checks that every inline [n] marker points at an existing citation. A
// citation without a page gets page 0 ("no page"). Values are never coerced
// into shape: any violation is returned with the raw model text.
func ValidateAnswer(decoded any, raw string) (*domain.AnswerJSON, error) {
	if err := answerSchema.VisitJSON(decoded, openapi3.MultiErrors()); err != nil {
		return nil, &domain.AnswerValidationError{Detail: err.Error(), Raw: raw}
	}

	encoded, err := json.Marshal(decoded)
	if err != nil {
		return nil, &domain.AnswerValidationError{Detail: err.Error(), Raw: raw}
	}
	var answer domain.AnswerJSON
	if err := json.Unmarshal(encoded, &answer); err != nil {
		return nil, &domain.AnswerValidationError{Detail: err.Error(), Raw: raw}
	}
	if answer.Citations == nil {
		answer.Citations = []domain.Citation{}
	}

	if err := checkCitationMarkers(answer); err != nil {
		return nil, &domain.AnswerValidationError{Detail: err.Error(), Raw: raw}
	}
	return &answer, nil
}

func checkCitationMarkers(answer domain.AnswerJSON) error {
	for _, m := range citationMarker.FindAllStringSubmatch(answer.Answer, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(answer.Citations) {
			return fmt.Errorf("answer marker [%s] has no matching citation (citations: %d)", m[1], len(answer.Citations))
		}
	}
	return nil
}
