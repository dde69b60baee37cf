package normalize

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedShape is returned when raw content is neither a legacy
// single-question object nor a quiz envelope.
var ErrUnrecognizedShape = errors.New("unrecognized quiz content shape")

// UnknownKindError is returned when a question's kind string matches no
// entry in the kind alias table.
type UnknownKindError struct {
	Value string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown question kind %q", e.Value)
}

// InvalidQuestionError reports a structural invariant violation in one
// question, naming the offending field.
type InvalidQuestionError struct {
	Index  int
	Field  string
	Reason string
}

func (e *InvalidQuestionError) Error() string {
	return fmt.Sprintf("invalid question at index %d: %s %s", e.Index, e.Field, e.Reason)
}

// IsUnknownKind checks if err reports an unregistered question kind.
func IsUnknownKind(err error) bool {
	var uk *UnknownKindError
	return errors.As(err, &uk)
}

// IsInvalidQuestion checks if err reports a per-question invariant violation.
func IsInvalidQuestion(err error) bool {
	var iq *InvalidQuestionError
	return errors.As(err, &iq)
}

// IsNormalizationError checks if err is any of the normalization failures.
// Callers should surface the raw payload for diagnosis when this is true,
// never coerce a best-guess quiz.
func IsNormalizationError(err error) bool {
	return errors.Is(err, ErrUnrecognizedShape) || IsUnknownKind(err) || IsInvalidQuestion(err)
}
