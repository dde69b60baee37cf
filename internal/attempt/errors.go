package attempt

import "errors"

// Transition errors. All transitions are total functions: expected edge
// cases come back as one of these, never as a panic.
var (
	ErrInvalidState       = errors.New("transition not allowed in current attempt state")
	ErrOutOfRange         = errors.New("question index out of range")
	ErrRetryNotAllowed    = errors.New("retry is not allowed for this quiz")
	ErrUnknownQuestion    = errors.New("question not found in quiz")
	ErrAnswerKindMismatch = errors.New("answer variant does not match question kind")
)

// IsTransitionError checks if err is one of the attempt transition errors.
func IsTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrRetryNotAllowed) ||
		errors.Is(err, ErrUnknownQuestion) ||
		errors.Is(err, ErrAnswerKindMismatch)
}
