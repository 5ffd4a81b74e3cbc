package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrTemporary         = errors.New("temporary failure")
	ErrMalformedOutput   = errors.New("malformed model output")
	ErrAnswerValidation  = errors.New("answer validation failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// MalformedOutputError is returned when neither the generation response nor
// its single repair pass parses as JSON.
type MalformedOutputError struct {
	Raw      string
	Repaired string
	Err      error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() []error {
	return []error{ErrMalformedOutput, e.Err}
}

// AnswerValidationError carries the schema violation together with the raw
// model text so callers can surface both.
type AnswerValidationError struct {
	Detail string
	Raw    string
}

func (e *AnswerValidationError) Error() string {
	return "JSON validation failed: " + e.Detail
}

func (e *AnswerValidationError) Unwrap() error {
	return ErrAnswerValidation
}

// RawModelText returns the raw model response attached to err, if any.
func RawModelText(err error) (string, bool) {
	var malformed *MalformedOutputError
	if errors.As(err, &malformed) {
		return malformed.Raw, true
	}
	var invalid *AnswerValidationError
	if errors.As(err, &invalid) {
		return invalid.Raw, true
	}
	return "", false
}
