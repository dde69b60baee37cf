package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError checks if err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// LearningObjectRepository is the content-storage collaborator boundary:
// the engine reads stored quiz payloads through it and nothing else.
type LearningObjectRepository interface {
	GetByID(ctx context.Context, id uint) (*LearningObject, error)
	ListByContentType(ctx context.Context, contentType string) ([]*LearningObject, error)
	Create(ctx context.Context, lob *LearningObject) error
}

// AttemptRecordRepository is the scoring/reporting collaborator boundary:
// completed attempt summaries are persisted through it.
type AttemptRecordRepository interface {
	Create(ctx context.Context, record *AttemptRecord) error
	GetByLearner(ctx context.Context, lobID uint, learnerID string) ([]*AttemptRecord, error)
}

// Repository bundles the persistence boundaries behind one handle.
type Repository interface {
	LearningObjects() LearningObjectRepository
	AttemptRecords() AttemptRecordRepository
	Ping(ctx context.Context) error
}

type gormRepository struct {
	db      *gorm.DB
	lobs    *learningObjectRepository
	records *attemptRecordRepository
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{
		db:      db,
		lobs:    &learningObjectRepository{db: db},
		records: &attemptRecordRepository{db: db},
	}
}

func (r *gormRepository) LearningObjects() LearningObjectRepository {
	return r.lobs
}

func (r *gormRepository) AttemptRecords() AttemptRecordRepository {
	return r.records
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate creates or updates the engine's tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&LearningObject{}, &AttemptRecord{})
}

type learningObjectRepository struct {
	db *gorm.DB
}

func (r *learningObjectRepository) GetByID(ctx context.Context, id uint) (*LearningObject, error) {
	var lob LearningObject
	err := r.db.WithContext(ctx).First(&lob, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learning object %d: %w", id, err)
	}
	return &lob, nil
}

func (r *learningObjectRepository) ListByContentType(ctx context.Context, contentType string) ([]*LearningObject, error) {
	var lobs []*LearningObject
	err := r.db.WithContext(ctx).
		Where("content_type = ?", contentType).
		Order("id").
		Find(&lobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list learning objects: %w", err)
	}
	return lobs, nil
}

func (r *learningObjectRepository) Create(ctx context.Context, lob *LearningObject) error {
	if err := r.db.WithContext(ctx).Create(lob).Error; err != nil {
		return fmt.Errorf("failed to create learning object: %w", err)
	}
	return nil
}

type attemptRecordRepository struct {
	db *gorm.DB
}

func (r *attemptRecordRepository) Create(ctx context.Context, record *AttemptRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create attempt record: %w", err)
	}
	return nil
}

func (r *attemptRecordRepository) GetByLearner(ctx context.Context, lobID uint, learnerID string) ([]*AttemptRecord, error) {
	var records []*AttemptRecord
	err := r.db.WithContext(ctx).
		Where("learning_object_id = ? AND learner_id = ?", lobID, learnerID).
		Order("completed_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt records: %w", err)
	}
	return records, nil
}
