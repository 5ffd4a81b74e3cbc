package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

const DefaultAnswerMaxTokens = 900

type AnswerSynthesizer struct {
	generator ports.AnswerGenerator
	maxTokens int
	observer  ports.PipelineObserver
}

func NewAnswerSynthesizer(generator ports.AnswerGenerator, maxTokens int, observer ports.PipelineObserver) *AnswerSynthesizer {
	if maxTokens <= 0 {
		maxTokens = DefaultAnswerMaxTokens
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &AnswerSynthesizer{
		generator: generator,
		maxTokens: maxTokens,
		observer:  observer,
	}
}

// Synthesize asks the generator for a grounded JSON answer, repairs malformed
// output at most once and validates the result.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, question string, snippets []domain.Snippet) (*domain.AnswerJSON, error) {
	messages, err := buildAnswerMessages(question, snippets)
	if err != nil {
		return nil, fmt.Errorf("build answer prompt: %w", err)
	}

	raw, err := s.generator.CompleteJSON(ctx, messages, s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	decoded, err := s.parseOrRepair(ctx, raw)
	if err != nil {
		return nil, err
	}

	answer, err := ValidateAnswer(decoded, raw)
	s.observer.AnswerValidated(err)
	if err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *AnswerSynthesizer) parseOrRepair(ctx context.Context, raw string) (any, error) {
	decoded, parseErr := decodeJSON(raw)
	if parseErr == nil {
		return decoded, nil
	}

	slog.Warn("answer_repair", "error", parseErr, "raw_len", len(raw))
	repaired, err := s.generator.CompleteJSON(ctx, buildRepairMessages(raw), s.maxTokens)
	if err != nil {
		s.observer.RepairAttempted(false)
		return nil, fmt.Errorf("repair answer: %w", err)
	}

	decoded, err = decodeJSON(repaired)
	s.observer.RepairAttempted(err == nil)
	if err != nil {
		return nil, &domain.MalformedOutputError{Raw: raw, Repaired: repaired, Err: err}
	}
	return decoded, nil
}

func decodeJSON(raw string) (any, error) {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
