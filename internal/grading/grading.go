package grading

import (
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/CourseLab-2025/quiz-engine/internal/models"
)

// Outcome is the grading result for one question. Correct is nil when the
// question cannot be auto-graded (essays awaiting a human grade).
type Outcome struct {
	Correct          *bool   `json:"correct"`
	ScoreAwarded     float64 `json:"score_awarded"`
	NeedsManualGrade bool    `json:"needs_manual_grade"`
}

// Grade is a pure function over any (question, answer) pair. A nil answer
// means the question was unattempted and grades as incorrect with zero
// score; an answer variant that does not match the question kind grades
// the same way. Grading never fails.
func Grade(q *models.Question, a models.Answer) Outcome {
	if a == nil {
		return incorrect()
	}

	switch q.Kind {
	case models.SingleChoice, models.ImageChoice:
		content, ok := q.Content.(models.SingleChoiceContent)
		if !ok {
			return incorrect()
		}
		selected, ok := selectedOption(a)
		if !ok {
			return incorrect()
		}
		return allOrNothing(q.Points, selected == content.Options[content.CorrectIndex])

	case models.MultiChoice:
		content, ok := q.Content.(models.MultiChoiceContent)
		if !ok {
			return incorrect()
		}
		answer, ok := a.(models.MultiChoiceAnswer)
		if !ok {
			return incorrect()
		}
		correct := lo.Map(content.CorrectIndexes, func(idx int, _ int) string {
			return content.Options[idx]
		})
		submitted := lo.Uniq(answer.Selected)
		// Set equality, no partial credit for subsets.
		equal := len(submitted) == len(correct) && lo.Every(correct, submitted)
		return allOrNothing(q.Points, equal)

	case models.TrueFalse:
		content, ok := q.Content.(models.TrueFalseContent)
		if !ok {
			return incorrect()
		}
		answer, ok := a.(models.TrueFalseAnswer)
		if !ok {
			return incorrect()
		}
		return allOrNothing(q.Points, answer.Value == content.Correct)

	case models.FillInBlank:
		content, ok := q.Content.(models.FillBlankContent)
		if !ok {
			return incorrect()
		}
		answer, ok := a.(models.FillBlankAnswer)
		if !ok {
			return incorrect()
		}
		return gradeFillBlank(q.Points, content, answer)

	case models.MatchPairs:
		content, ok := q.Content.(models.MatchPairsContent)
		if !ok {
			return incorrect()
		}
		answer, ok := a.(models.MatchPairsAnswer)
		if !ok {
			return incorrect()
		}
		for _, pair := range content.Pairs {
			if answer.Pairs[pair.Left] != pair.Right {
				return incorrect()
			}
		}
		return allOrNothing(q.Points, true)

	case models.Sequence:
		content, ok := q.Content.(models.SequenceContent)
		if !ok {
			return incorrect()
		}
		answer, ok := a.(models.SequenceAnswer)
		if !ok {
			return incorrect()
		}
		return allOrNothing(q.Points, slices.Equal(answer.Order, content.CorrectOrder))

	case models.ShortAnswer:
		content, ok := q.Content.(models.ShortAnswerContent)
		if !ok {
			return incorrect()
		}
		answer, ok := a.(models.ShortAnswerSubmission)
		if !ok {
			return incorrect()
		}
		submitted := normalizeText(answer.Text)
		match := lo.SomeBy(content.AcceptedAnswers, func(accepted string) bool {
			return normalizeText(accepted) == submitted
		})
		return allOrNothing(q.Points, match)

	case models.Numeric:
		content, ok := q.Content.(models.NumericContent)
		if !ok {
			return incorrect()
		}
		answer, ok := a.(models.NumericAnswer)
		if !ok {
			return incorrect()
		}
		return allOrNothing(q.Points, math.Abs(answer.Value-content.Correct) <= content.Tolerance)

	case models.Essay:
		if _, ok := a.(models.EssayAnswer); !ok {
			return incorrect()
		}
		// Essays need a human grade; the score stays provisional at 0.
		return Outcome{Correct: nil, ScoreAwarded: 0, NeedsManualGrade: true}
	}

	return incorrect()
}

func gradeFillBlank(points float64, content models.FillBlankContent, answer models.FillBlankAnswer) Outcome {
	matched := 0
	for i, expected := range content.Blanks {
		if i >= len(answer.Blanks) {
			break
		}
		if strings.EqualFold(strings.TrimSpace(answer.Blanks[i]), strings.TrimSpace(expected)) {
			matched++
		}
	}
	// Each blank is an independent sub-question, so partial credit applies.
	correct := matched == len(content.Blanks)
	return Outcome{
		Correct:      &correct,
		ScoreAwarded: points * float64(matched) / float64(len(content.Blanks)),
	}
}

func selectedOption(a models.Answer) (string, bool) {
	switch answer := a.(type) {
	case models.SingleChoiceAnswer:
		return answer.Selected, true
	case models.ImageChoiceAnswer:
		return answer.Selected, true
	}
	return "", false
}

func allOrNothing(points float64, correct bool) Outcome {
	outcome := Outcome{Correct: &correct}
	if correct {
		outcome.ScoreAwarded = points
	}
	return outcome
}

func incorrect() Outcome {
	return allOrNothing(0, false)
}

// normalizeText lowercases and collapses internal whitespace.
func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
