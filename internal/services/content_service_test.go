package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/CourseLab-2025/quiz-engine/internal/cache"
	"github.com/CourseLab-2025/quiz-engine/internal/events"
	"github.com/CourseLab-2025/quiz-engine/internal/normalize"
	"github.com/CourseLab-2025/quiz-engine/internal/store"
	"github.com/CourseLab-2025/quiz-engine/internal/utils"
)

// MockLearningObjectRepository is a mock implementation of store.LearningObjectRepository
type MockLearningObjectRepository struct {
	mock.Mock
}

func (m *MockLearningObjectRepository) GetByID(ctx context.Context, id uint) (*store.LearningObject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.LearningObject), args.Error(1)
}

func (m *MockLearningObjectRepository) ListByContentType(ctx context.Context, contentType string) ([]*store.LearningObject, error) {
	args := m.Called(ctx, contentType)
	return args.Get(0).([]*store.LearningObject), args.Error(1)
}

func (m *MockLearningObjectRepository) Create(ctx context.Context, lob *store.LearningObject) error {
	args := m.Called(ctx, lob)
	return args.Error(0)
}

// MockAttemptRecordRepository is a mock implementation of store.AttemptRecordRepository
type MockAttemptRecordRepository struct {
	mock.Mock
}

func (m *MockAttemptRecordRepository) Create(ctx context.Context, record *store.AttemptRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAttemptRecordRepository) GetByLearner(ctx context.Context, lobID uint, learnerID string) ([]*store.AttemptRecord, error) {
	args := m.Called(ctx, lobID, learnerID)
	return args.Get(0).([]*store.AttemptRecord), args.Error(1)
}

// MockRepository bundles the repository mocks behind store.Repository
type MockRepository struct {
	lobs    *MockLearningObjectRepository
	records *MockAttemptRecordRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		lobs:    &MockLearningObjectRepository{},
		records: &MockAttemptRecordRepository{},
	}
}

func (m *MockRepository) LearningObjects() store.LearningObjectRepository { return m.lobs }
func (m *MockRepository) AttemptRecords() store.AttemptRecordRepository   { return m.records }
func (m *MockRepository) Ping(ctx context.Context) error                  { return nil }

// MockCacheService is a mock implementation of cache.CacheService
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const validQuizPayload = `{
	"title": "Geography",
	"questions": [
		{"id": "q1", "kind": "single_choice", "prompt": "Capital of France?", "options": ["Paris", "Rome"], "correct": "Paris"}
	]
}`

func newContentFixture() (*MockRepository, *MockCacheService, *events.MockEventPublisher, ContentService) {
	repo := newMockRepository()
	cacheService := &MockCacheService{}
	publisher := events.NewMockEventPublisher(testLogger())
	service := NewContentService(repo, cacheService, publisher, testLogger(), utils.NewValidator())
	return repo, cacheService, publisher, service
}

func TestContentService_GetQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss loads and normalizes stored content", func(t *testing.T) {
		repo, cacheService, _, service := newContentFixture()

		cacheService.On("Get", ctx, "quiz:lob:1", mock.Anything).Return(cache.ErrCacheMiss)
		repo.lobs.On("GetByID", ctx, uint(1)).Return(&store.LearningObject{
			ID:          1,
			Title:       "Geography",
			ContentType: store.ContentTypeQuiz,
			Payload:     datatypes.JSON(validQuizPayload),
		}, nil)
		cacheService.On("Set", ctx, "quiz:lob:1", mock.Anything, quizCacheTTL).Return(nil)

		quiz, err := service.GetQuiz(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Geography", quiz.Title)
		require.Len(t, quiz.Questions, 1)
		assert.Equal(t, "q1", quiz.Questions[0].ID)

		cacheService.AssertExpectations(t)
		repo.lobs.AssertExpectations(t)
	})

	t.Run("cache hit skips the store", func(t *testing.T) {
		repo, cacheService, _, service := newContentFixture()

		first, err := normalize.Normalize([]byte(validQuizPayload))
		require.NoError(t, err)
		canonical, err := json.Marshal(first)
		require.NoError(t, err)

		cacheService.On("Get", ctx, "quiz:lob:2", mock.Anything).
			Run(func(args mock.Arguments) {
				*(args.Get(2).(*string)) = string(canonical)
			}).
			Return(nil)

		quiz, err := service.GetQuiz(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, first, quiz)

		repo.lobs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("missing learning object", func(t *testing.T) {
		repo, cacheService, _, service := newContentFixture()

		cacheService.On("Get", ctx, "quiz:lob:3", mock.Anything).Return(cache.ErrCacheMiss)
		repo.lobs.On("GetByID", ctx, uint(3)).Return(nil, store.ErrNotFound)

		_, err := service.GetQuiz(ctx, 3)
		assert.ErrorIs(t, err, ErrContentNotFound)
	})

	t.Run("wrong content type", func(t *testing.T) {
		repo, cacheService, _, service := newContentFixture()

		cacheService.On("Get", ctx, "quiz:lob:4", mock.Anything).Return(cache.ErrCacheMiss)
		repo.lobs.On("GetByID", ctx, uint(4)).Return(&store.LearningObject{
			ID: 4, ContentType: "video", Payload: datatypes.JSON(`{}`),
		}, nil)

		_, err := service.GetQuiz(ctx, 4)
		assert.ErrorIs(t, err, ErrContentNotQuiz)
	})

	t.Run("invalid content surfaces raw payload and publishes event", func(t *testing.T) {
		repo, cacheService, publisher, service := newContentFixture()
		badPayload := `{"questions": [{"kind": "freeform_drawing", "prompt": "Draw"}]}`

		cacheService.On("Get", ctx, "quiz:lob:5", mock.Anything).Return(cache.ErrCacheMiss)
		repo.lobs.On("GetByID", ctx, uint(5)).Return(&store.LearningObject{
			ID: 5, ContentType: store.ContentTypeQuiz, Payload: datatypes.JSON(badPayload),
		}, nil)

		_, err := service.GetQuiz(ctx, 5)
		require.Error(t, err)
		assert.True(t, IsContentError(err))

		var ce *ContentError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, uint(5), ce.LearningObjectID)
		assert.JSONEq(t, badPayload, string(ce.Raw))
		assert.True(t, normalize.IsUnknownKind(ce.Err))

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventNormalizationFailed, published[0].Type)
	})

	t.Run("cache write failure is not fatal", func(t *testing.T) {
		repo, cacheService, _, service := newContentFixture()

		cacheService.On("Get", ctx, "quiz:lob:6", mock.Anything).Return(cache.ErrCacheMiss)
		repo.lobs.On("GetByID", ctx, uint(6)).Return(&store.LearningObject{
			ID: 6, ContentType: store.ContentTypeQuiz, Payload: datatypes.JSON(validQuizPayload),
		}, nil)
		cacheService.On("Set", ctx, "quiz:lob:6", mock.Anything, quizCacheTTL).
			Return(assert.AnError)

		quiz, err := service.GetQuiz(ctx, 6)
		require.NoError(t, err)
		assert.Equal(t, "Geography", quiz.Title)
	})
}

func TestContentService_SaveQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("valid content is stored as supplied", func(t *testing.T) {
		repo, _, _, service := newContentFixture()

		repo.lobs.On("Create", ctx, mock.MatchedBy(func(lob *store.LearningObject) bool {
			return lob.ContentType == store.ContentTypeQuiz &&
				lob.Title == "Geography" &&
				lob.CreatedBy == "author-1"
		})).Return(nil)

		lob, err := service.SaveQuiz(ctx, "Geography", "author-1", []byte(validQuizPayload))
		require.NoError(t, err)
		assert.JSONEq(t, validQuizPayload, string(lob.Payload))
		repo.lobs.AssertExpectations(t)
	})

	t.Run("invalid content never reaches the store", func(t *testing.T) {
		repo, _, _, service := newContentFixture()

		_, err := service.SaveQuiz(ctx, "Broken", "author-1", []byte(`{"nothing": true}`))
		require.Error(t, err)
		assert.True(t, IsContentError(err))
		repo.lobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestContentService_ListQuizzes(t *testing.T) {
	ctx := context.Background()
	repo, _, _, service := newContentFixture()

	// Listing returns stored payloads untouched; a broken quiz in the
	// catalog must not block browsing.
	lobs := []*store.LearningObject{
		{ID: 1, Title: "Geography", ContentType: store.ContentTypeQuiz, Payload: datatypes.JSON(validQuizPayload)},
		{ID: 2, Title: "Broken", ContentType: store.ContentTypeQuiz, Payload: datatypes.JSON(`{"nothing": true}`)},
	}
	repo.lobs.On("ListByContentType", ctx, store.ContentTypeQuiz).Return(lobs, nil)

	got, err := service.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Equal(t, lobs, got)
}

func TestContentService_InvalidateQuiz(t *testing.T) {
	ctx := context.Background()
	_, cacheService, _, service := newContentFixture()

	cacheService.On("Delete", ctx, "quiz:lob:9").Return(nil)
	require.NoError(t, service.InvalidateQuiz(ctx, 9))
	cacheService.AssertExpectations(t)
}
