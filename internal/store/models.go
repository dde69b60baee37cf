package store

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LearningObject is one unit of course content (a LOB). Quiz content is
// stored exactly as authored in Payload; the engine normalizes it on read,
// so no schema migration step exists for historical kind-string variants.
type LearningObject struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	ContentType string         `json:"content_type" gorm:"not null;size:50;index" validate:"required"`
	Payload     datatypes.JSON `json:"payload" gorm:"type:jsonb"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"size:100;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// ContentTypeQuiz marks a learning object whose payload carries quiz JSON.
const ContentTypeQuiz = "quiz"

func (LearningObject) TableName() string {
	return "learning_objects"
}

// AttemptRecord is the persisted result of one completed attempt, written
// for the scoring/reporting collaborator. The engine itself holds attempt
// state in memory only; records are append-only snapshots of Complete().
type AttemptRecord struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	LearningObjectID uint   `json:"learning_object_id" gorm:"not null;index"`
	LearnerID        string `json:"learner_id" gorm:"not null;size:100;index"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	ScorePercent   float64        `json:"score_percent"`
	PointsAwarded  float64        `json:"points_awarded"`
	PointsPossible float64        `json:"points_possible"`
	Provisional    bool           `json:"provisional"`
	Passed         *bool          `json:"passed"`
	Outcomes       datatypes.JSON `json:"outcomes" gorm:"type:jsonb"` // map[questionID]grading.Outcome

	CreatedAt time.Time `json:"created_at"`

	// Relations
	LearningObject LearningObject `json:"learning_object" gorm:"foreignKey:LearningObjectID"`
}

func (AttemptRecord) TableName() string {
	return "attempt_records"
}
