package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of quiz lifecycle events
type EventType string

const (
	// Attempt events
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptCompleted EventType = "attempt.completed"

	// Grading events
	EventManualGradingRequired EventType = "grading.manual_required"

	// Content events
	EventNormalizationFailed EventType = "content.normalization_failed"
)

// QuizEvent is the base event structure for all quiz engine events
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Attempt event payloads

type AttemptStartedEvent struct {
	LearningObjectID uint      `json:"learning_object_id"`
	QuizTitle        string    `json:"quiz_title"`
	LearnerID        string    `json:"learner_id"`
	StartedAt        time.Time `json:"started_at"`
	QuestionCount    int       `json:"question_count"`
	TimeLimitMinutes int       `json:"time_limit_minutes,omitempty"`
}

type AttemptCompletedEvent struct {
	LearningObjectID uint      `json:"learning_object_id"`
	QuizTitle        string    `json:"quiz_title"`
	LearnerID        string    `json:"learner_id"`
	CompletedAt      time.Time `json:"completed_at"`
	ScorePercent     float64   `json:"score_percent"`
	PointsAwarded    float64   `json:"points_awarded"`
	PointsPossible   float64   `json:"points_possible"`
	Provisional      bool      `json:"provisional"`
	Passed           *bool     `json:"passed,omitempty"`
}

// Grading event payload

type ManualGradingRequiredEvent struct {
	LearningObjectID uint     `json:"learning_object_id"`
	QuizTitle        string   `json:"quiz_title"`
	LearnerID        string   `json:"learner_id"`
	EssayQuestionIDs []string `json:"essay_question_ids"`
}

// Content event payload

type NormalizationFailedEvent struct {
	LearningObjectID uint   `json:"learning_object_id"`
	Reason           string `json:"reason"`
}

// Event factory functions

func NewAttemptStartedEvent(data AttemptStartedEvent) *QuizEvent {
	return newEvent(EventAttemptStarted, data)
}

func NewAttemptCompletedEvent(data AttemptCompletedEvent) *QuizEvent {
	return newEvent(EventAttemptCompleted, data)
}

func NewManualGradingRequiredEvent(data ManualGradingRequiredEvent) *QuizEvent {
	return newEvent(EventManualGradingRequired, data)
}

func NewNormalizationFailedEvent(data NormalizationFailedEvent) *QuizEvent {
	return newEvent(EventNormalizationFailed, data)
}

func newEvent(eventType EventType, data interface{}) *QuizEvent {
	return &QuizEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "quiz-engine",
		Version:   "1.0",
		Data:      data,
	}
}
