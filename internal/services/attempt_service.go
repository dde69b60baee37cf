package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CourseLab-2025/quiz-engine/internal/attempt"
	"github.com/CourseLab-2025/quiz-engine/internal/events"
	"github.com/CourseLab-2025/quiz-engine/internal/grading"
	"github.com/CourseLab-2025/quiz-engine/internal/models"
	"github.com/CourseLab-2025/quiz-engine/internal/store"
)

// AttemptSession binds an in-memory attempt to the learner and learning
// object it belongs to. Sessions live for the duration of an attempt; only
// the completed summary is persisted.
type AttemptSession struct {
	ID               string
	LearningObjectID uint
	LearnerID        string
	Quiz             *models.Quiz
	Attempt          *attempt.Attempt
}

// AttemptService drives attempt lifecycles over normalized quizzes:
// starting sessions, completing them into persisted records, retries, and
// out-of-band manual essay grades.
type AttemptService interface {
	Start(ctx context.Context, lobID uint, learnerID string, opts ...attempt.Option) (*AttemptSession, error)
	Get(sessionID string) (*AttemptSession, error)
	Complete(ctx context.Context, sessionID string) (grading.Summary, error)
	Retry(ctx context.Context, sessionID string) (*AttemptSession, error)
	ApplyManualGrades(ctx context.Context, sessionID string, manual map[string]float64) (grading.Summary, error)
	History(ctx context.Context, lobID uint, learnerID string) ([]*store.AttemptRecord, error)
}

type attemptService struct {
	content   ContentService
	repo      store.Repository
	publisher events.EventPublisher
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*AttemptSession
}

func NewAttemptService(
	content ContentService,
	repo store.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
) AttemptService {
	return &attemptService{
		content:   content,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		sessions:  make(map[string]*AttemptSession),
	}
}

// Start normalizes the learning object's quiz content and opens a new
// attempt over it. A normalization failure surfaces here, before any
// attempt state exists.
func (s *attemptService) Start(ctx context.Context, lobID uint, learnerID string, opts ...attempt.Option) (*AttemptSession, error) {
	quiz, err := s.content.GetQuiz(ctx, lobID)
	if err != nil {
		return nil, err
	}

	att := attempt.New(quiz, opts...)
	if err := att.Start(); err != nil {
		return nil, fmt.Errorf("failed to start attempt: %w", err)
	}

	session := &AttemptSession{
		ID:               uuid.NewString(),
		LearningObjectID: lobID,
		LearnerID:        learnerID,
		Quiz:             quiz,
		Attempt:          att,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("Attempt started",
		"session_id", session.ID,
		"lob_id", lobID,
		"learner_id", learnerID,
		"questions", len(quiz.Questions))

	s.publish(ctx, events.NewAttemptStartedEvent(events.AttemptStartedEvent{
		LearningObjectID: lobID,
		QuizTitle:        quiz.Title,
		LearnerID:        learnerID,
		StartedAt:        att.StartedAt(),
		QuestionCount:    len(quiz.Questions),
		TimeLimitMinutes: quiz.TimeLimitMinutes,
	}))

	return session, nil
}

func (s *attemptService) Get(sessionID string) (*AttemptSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return session, nil
}

// Complete finishes the attempt, persists the summary for the reporting
// collaborator and publishes lifecycle events. Transition errors from the
// state machine pass through unchanged.
func (s *attemptService) Complete(ctx context.Context, sessionID string) (grading.Summary, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return grading.Summary{}, err
	}

	summary, err := session.Attempt.Complete()
	if err != nil {
		return grading.Summary{}, err
	}

	if err := s.persistSummary(ctx, session, summary); err != nil {
		s.logger.Error("Failed to persist attempt record",
			"session_id", sessionID, "error", err)
		return summary, err
	}

	completedAt := time.Now()
	if at := session.Attempt.CompletedAt(); at != nil {
		completedAt = *at
	}

	s.publish(ctx, events.NewAttemptCompletedEvent(events.AttemptCompletedEvent{
		LearningObjectID: session.LearningObjectID,
		QuizTitle:        session.Quiz.Title,
		LearnerID:        session.LearnerID,
		CompletedAt:      completedAt,
		ScorePercent:     summary.ScorePercent,
		PointsAwarded:    summary.PointsAwarded,
		PointsPossible:   summary.PointsPossible,
		Provisional:      summary.Provisional,
		Passed:           summary.Passed,
	}))

	if summary.Provisional {
		s.publish(ctx, events.NewManualGradingRequiredEvent(events.ManualGradingRequiredEvent{
			LearningObjectID: session.LearningObjectID,
			QuizTitle:        session.Quiz.Title,
			LearnerID:        session.LearnerID,
			EssayQuestionIDs: essayQuestionIDs(session.Quiz),
		}))
	}

	s.logger.Info("Attempt completed",
		"session_id", sessionID,
		"score_percent", summary.ScorePercent,
		"provisional", summary.Provisional)

	return summary, nil
}

// Retry opens a fresh session over the same quiz. The completed session
// stays registered and immutable.
func (s *attemptService) Retry(ctx context.Context, sessionID string) (*AttemptSession, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	next, err := session.Attempt.Retry()
	if err != nil {
		return nil, err
	}
	if err := next.Start(); err != nil {
		return nil, fmt.Errorf("failed to start retry attempt: %w", err)
	}

	retrySession := &AttemptSession{
		ID:               uuid.NewString(),
		LearningObjectID: session.LearningObjectID,
		LearnerID:        session.LearnerID,
		Quiz:             session.Quiz,
		Attempt:          next,
	}

	s.mu.Lock()
	s.sessions[retrySession.ID] = retrySession
	s.mu.Unlock()

	s.logger.Info("Attempt retried",
		"previous_session_id", sessionID,
		"session_id", retrySession.ID)

	return retrySession, nil
}

// ApplyManualGrades folds human essay grades into a completed attempt and
// persists the adjusted summary as a new record. The attempt itself stays
// immutable.
func (s *attemptService) ApplyManualGrades(ctx context.Context, sessionID string, manual map[string]float64) (grading.Summary, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return grading.Summary{}, err
	}
	if session.Attempt.Status() != attempt.StatusCompleted {
		return grading.Summary{}, ErrAttemptNotCompleted
	}

	summary := grading.ScoreWithManual(session.Quiz, session.Attempt.Answers(), manual)
	if err := s.persistSummary(ctx, session, summary); err != nil {
		return summary, err
	}

	s.logger.Info("Manual grades applied",
		"session_id", sessionID,
		"score_percent", summary.ScorePercent,
		"provisional", summary.Provisional)

	return summary, nil
}

func (s *attemptService) History(ctx context.Context, lobID uint, learnerID string) ([]*store.AttemptRecord, error) {
	return s.repo.AttemptRecords().GetByLearner(ctx, lobID, learnerID)
}

func (s *attemptService) persistSummary(ctx context.Context, session *AttemptSession, summary grading.Summary) error {
	outcomes, err := json.Marshal(summary.Outcomes)
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}

	completedAt := time.Now()
	if at := session.Attempt.CompletedAt(); at != nil {
		completedAt = *at
	}

	record := &store.AttemptRecord{
		LearningObjectID: session.LearningObjectID,
		LearnerID:        session.LearnerID,
		StartedAt:        session.Attempt.StartedAt(),
		CompletedAt:      completedAt,
		ScorePercent:     summary.ScorePercent,
		PointsAwarded:    summary.PointsAwarded,
		PointsPossible:   summary.PointsPossible,
		Provisional:      summary.Provisional,
		Passed:           summary.Passed,
		Outcomes:         outcomes,
	}
	return s.repo.AttemptRecords().Create(ctx, record)
}

func (s *attemptService) publish(ctx context.Context, event *events.QuizEvent) {
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish quiz event",
			"event_type", event.Type, "error", err)
	}
}

func essayQuestionIDs(quiz *models.Quiz) []string {
	var ids []string
	for i := range quiz.Questions {
		if quiz.Questions[i].Kind == models.Essay {
			ids = append(ids, quiz.Questions[i].ID)
		}
	}
	return ids
}
