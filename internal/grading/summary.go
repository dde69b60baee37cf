package grading

import (
	"github.com/CourseLab-2025/quiz-engine/internal/models"
)

// Summary aggregates per-question outcomes into a final score. Essay
// points stay out of PointsPossible until a manual grade is supplied, so
// an automatic total never silently dilutes or inflates the percentage.
type Summary struct {
	Outcomes       map[string]Outcome `json:"outcomes"`
	PointsAwarded  float64            `json:"points_awarded"`
	PointsPossible float64            `json:"points_possible"`
	EssayPoints    float64            `json:"essay_points"`
	ScorePercent   float64            `json:"score_percent"`
	Provisional    bool               `json:"provisional"`
	Passed         *bool              `json:"passed,omitempty"`
}

// Score grades every question in the quiz against the supplied answers.
// Questions absent from the answer map grade as unattempted (zero score).
func Score(quiz *models.Quiz, answers map[string]models.Answer) Summary {
	return ScoreWithManual(quiz, answers, nil)
}

// ScoreWithManual is Score plus out-of-band human grades for essay
// questions, keyed by question id. A manually graded essay counts toward
// both awarded and possible points; an ungraded, attempted essay marks the
// summary provisional.
func ScoreWithManual(quiz *models.Quiz, answers map[string]models.Answer, manual map[string]float64) Summary {
	summary := Summary{Outcomes: make(map[string]Outcome, len(quiz.Questions))}

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		outcome := Grade(q, answers[q.ID])

		if q.Kind == models.Essay {
			summary.EssayPoints += q.Points
			if grade, ok := manual[q.ID]; ok {
				outcome.ScoreAwarded = clamp(grade, 0, q.Points)
				outcome.NeedsManualGrade = false
				summary.PointsAwarded += outcome.ScoreAwarded
				summary.PointsPossible += q.Points
			} else if outcome.NeedsManualGrade {
				summary.Provisional = true
			}
		} else {
			summary.PointsAwarded += outcome.ScoreAwarded
			summary.PointsPossible += q.Points
		}

		summary.Outcomes[q.ID] = outcome
	}

	if summary.PointsPossible > 0 {
		summary.ScorePercent = summary.PointsAwarded / summary.PointsPossible * 100
	}
	if quiz.PassingScorePercent > 0 {
		passed := summary.ScorePercent >= quiz.PassingScorePercent
		summary.Passed = &passed
	}
	return summary
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
