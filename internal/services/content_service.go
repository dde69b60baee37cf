package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/CourseLab-2025/quiz-engine/internal/cache"
	"github.com/CourseLab-2025/quiz-engine/internal/events"
	"github.com/CourseLab-2025/quiz-engine/internal/models"
	"github.com/CourseLab-2025/quiz-engine/internal/normalize"
	"github.com/CourseLab-2025/quiz-engine/internal/store"
	"github.com/CourseLab-2025/quiz-engine/internal/utils"
)

// quizCacheTTL bounds how long a normalized quiz stays cached; authors
// editing content see the change after at most this long.
const quizCacheTTL = 15 * time.Minute

// ContentService is the inbound boundary with the content-storage
// collaborator: it loads a quiz learning object, normalizes its raw
// payload into the canonical aggregate and caches the canonical form.
type ContentService interface {
	GetQuiz(ctx context.Context, lobID uint) (*models.Quiz, error)
	ListQuizzes(ctx context.Context) ([]*store.LearningObject, error)
	SaveQuiz(ctx context.Context, title, createdBy string, raw []byte) (*store.LearningObject, error)
	InvalidateQuiz(ctx context.Context, lobID uint) error
}

type contentService struct {
	repo      store.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewContentService(
	repo store.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) ContentService {
	return &contentService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func quizCacheKey(lobID uint) string {
	return fmt.Sprintf("quiz:lob:%d", lobID)
}

// GetQuiz returns the canonical quiz for a learning object. The cache
// holds the canonical JSON envelope; normalization is idempotent, so a
// cache hit re-normalizes the canonical form instead of trusting a stored
// typed value.
func (s *contentService) GetQuiz(ctx context.Context, lobID uint) (*models.Quiz, error) {
	var canonical string
	if err := s.cache.Get(ctx, quizCacheKey(lobID), &canonical); err == nil {
		quiz, err := normalize.Normalize([]byte(canonical))
		if err == nil {
			return quiz, nil
		}
		s.logger.Warn("Discarding corrupt cached quiz", "lob_id", lobID, "error", err)
	}

	lob, err := s.repo.LearningObjects().GetByID(ctx, lobID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to load learning object: %w", err)
	}
	if lob.ContentType != store.ContentTypeQuiz {
		return nil, ErrContentNotQuiz
	}

	quiz, err := normalize.Normalize(lob.Payload)
	if err != nil {
		s.logger.Warn("Quiz content failed normalization",
			"lob_id", lobID,
			"error", err)
		if pubErr := s.publisher.PublishQuizEvent(ctx, events.NewNormalizationFailedEvent(events.NormalizationFailedEvent{
			LearningObjectID: lobID,
			Reason:           err.Error(),
		})); pubErr != nil {
			s.logger.Error("Failed to publish normalization failure", "lob_id", lobID, "error", pubErr)
		}
		return nil, &ContentError{LearningObjectID: lobID, Raw: lob.Payload, Err: err}
	}

	if err := s.validator.Validate(quiz); err != nil {
		return nil, &ContentError{LearningObjectID: lobID, Raw: lob.Payload, Err: err}
	}

	canonicalBytes, err := json.Marshal(quiz)
	if err == nil {
		if err := s.cache.Set(ctx, quizCacheKey(lobID), string(canonicalBytes), quizCacheTTL); err != nil {
			s.logger.Warn("Failed to cache normalized quiz", "lob_id", lobID, "error", err)
		}
	}

	s.logger.Info("Quiz content normalized",
		"lob_id", lobID,
		"title", quiz.Title,
		"questions", len(quiz.Questions))

	return quiz, nil
}

// ListQuizzes returns every quiz learning object without normalizing the
// payloads. A broken quiz must never block browsing the rest of the
// catalog, so payload errors only surface when a single quiz is opened.
func (s *contentService) ListQuizzes(ctx context.Context) ([]*store.LearningObject, error) {
	lobs, err := s.repo.LearningObjects().ListByContentType(ctx, store.ContentTypeQuiz)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz content: %w", err)
	}
	return lobs, nil
}

// SaveQuiz validates raw quiz content by normalizing it, then stores it
// exactly as supplied. Invalid content never reaches the store.
func (s *contentService) SaveQuiz(ctx context.Context, title, createdBy string, raw []byte) (*store.LearningObject, error) {
	if _, err := normalize.Normalize(raw); err != nil {
		return nil, &ContentError{Raw: raw, Err: err}
	}

	lob := &store.LearningObject{
		Title:       title,
		ContentType: store.ContentTypeQuiz,
		Payload:     raw,
		CreatedBy:   createdBy,
	}
	if err := s.repo.LearningObjects().Create(ctx, lob); err != nil {
		return nil, fmt.Errorf("failed to save quiz content: %w", err)
	}

	s.logger.Info("Quiz content saved", "lob_id", lob.ID, "title", title)
	return lob, nil
}

// InvalidateQuiz drops the cached canonical form for a learning object.
func (s *contentService) InvalidateQuiz(ctx context.Context, lobID uint) error {
	return s.cache.Delete(ctx, quizCacheKey(lobID))
}
