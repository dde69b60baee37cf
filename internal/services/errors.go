package services

import (
	"errors"
	"fmt"

	apperrors "github.com/CourseLab-2025/quiz-engine/internal/errors"
	"github.com/CourseLab-2025/quiz-engine/internal/normalize"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Content specific errors
	ErrContentNotFound = errors.New("learning object not found")
	ErrContentNotQuiz  = errors.New("learning object does not carry quiz content")

	// Attempt specific errors
	ErrAttemptNotFound     = errors.New("attempt session not found")
	ErrAttemptNotCompleted = errors.New("attempt is not completed")

	// Generic errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal error")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ContentError wraps a normalization failure together with the raw stored
// payload so the caller can show it for diagnosis. A failure is scoped to
// the one learning object being viewed; it must never block navigation to
// unrelated content.
type ContentError struct {
	LearningObjectID uint   `json:"learning_object_id"`
	Raw              []byte `json:"raw"`
	Err              error  `json:"-"`
}

func (ce *ContentError) Error() string {
	return fmt.Sprintf("invalid quiz content in learning object %d: %v", ce.LearningObjectID, ce.Err)
}

func (ce *ContentError) Unwrap() error {
	return ce.Err
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsContentError checks if error represents a quiz content failure whose
// raw payload should be surfaced for diagnosis.
func IsContentError(err error) bool {
	var ce *ContentError
	return errors.As(err, &ce) || normalize.IsNormalizationError(err)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}
