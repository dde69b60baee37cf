package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CourseLab-2025/quiz-engine/internal/models"
)

func question(kind models.QuestionKind, points float64, content any) *models.Question {
	return &models.Question{
		ID:      "q1",
		Kind:    kind,
		Prompt:  "prompt",
		Points:  points,
		Content: content,
	}
}

func TestGrade_SingleChoice(t *testing.T) {
	q := question(models.SingleChoice, 2, models.SingleChoiceContent{
		Options:      []string{"Paris", "Rome", "Madrid"},
		CorrectIndex: 0,
	})

	t.Run("correct selection", func(t *testing.T) {
		outcome := Grade(q, models.SingleChoiceAnswer{Selected: "Paris"})
		assert.True(t, *outcome.Correct)
		assert.Equal(t, 2.0, outcome.ScoreAwarded)
		assert.False(t, outcome.NeedsManualGrade)
	})

	t.Run("wrong selection", func(t *testing.T) {
		outcome := Grade(q, models.SingleChoiceAnswer{Selected: "Rome"})
		assert.False(t, *outcome.Correct)
		assert.Equal(t, 0.0, outcome.ScoreAwarded)
	})

	t.Run("unattempted", func(t *testing.T) {
		outcome := Grade(q, nil)
		assert.False(t, *outcome.Correct)
		assert.Equal(t, 0.0, outcome.ScoreAwarded)
	})

	t.Run("mismatched answer variant", func(t *testing.T) {
		outcome := Grade(q, models.TrueFalseAnswer{Value: true})
		assert.False(t, *outcome.Correct)
		assert.Equal(t, 0.0, outcome.ScoreAwarded)
	})
}

func TestGrade_MultiChoice(t *testing.T) {
	q := question(models.MultiChoice, 3, models.MultiChoiceContent{
		Options:        []string{"a", "b", "c", "d"},
		CorrectIndexes: []int{0, 2},
	})

	tests := []struct {
		name     string
		selected []string
		correct  bool
	}{
		{"exact set", []string{"a", "c"}, true},
		{"order does not matter", []string{"c", "a"}, true},
		{"duplicates collapse", []string{"a", "a", "c"}, true},
		{"subset gets no partial credit", []string{"a"}, false},
		{"superset is wrong", []string{"a", "b", "c"}, false},
		{"disjoint set is wrong", []string{"b", "d"}, false},
		{"empty selection is wrong", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Grade(q, models.MultiChoiceAnswer{Selected: tt.selected})
			assert.Equal(t, tt.correct, *outcome.Correct)
			if tt.correct {
				assert.Equal(t, 3.0, outcome.ScoreAwarded)
			} else {
				assert.Equal(t, 0.0, outcome.ScoreAwarded)
			}
		})
	}
}

func TestGrade_TrueFalse(t *testing.T) {
	q := question(models.TrueFalse, 1, models.TrueFalseContent{Correct: false})

	outcome := Grade(q, models.TrueFalseAnswer{Value: false})
	assert.True(t, *outcome.Correct)
	assert.Equal(t, 1.0, outcome.ScoreAwarded)

	outcome = Grade(q, models.TrueFalseAnswer{Value: true})
	assert.False(t, *outcome.Correct)
	assert.Equal(t, 0.0, outcome.ScoreAwarded)
}

func TestGrade_FillInBlank(t *testing.T) {
	q := question(models.FillInBlank, 3, models.FillBlankContent{
		Blanks: []string{"mitochondria", "ribosome", "nucleus"},
	})

	t.Run("all blanks matched", func(t *testing.T) {
		outcome := Grade(q, models.FillBlankAnswer{Blanks: []string{"mitochondria", "ribosome", "nucleus"}})
		assert.True(t, *outcome.Correct)
		assert.Equal(t, 3.0, outcome.ScoreAwarded)
	})

	t.Run("two of three earns partial credit", func(t *testing.T) {
		outcome := Grade(q, models.FillBlankAnswer{Blanks: []string{"mitochondria", "golgi", "nucleus"}})
		assert.False(t, *outcome.Correct)
		assert.InDelta(t, 2.0, outcome.ScoreAwarded, 1e-9)
	})

	t.Run("matching ignores case and surrounding whitespace", func(t *testing.T) {
		outcome := Grade(q, models.FillBlankAnswer{Blanks: []string{" Mitochondria ", "RIBOSOME", "nucleus"}})
		assert.True(t, *outcome.Correct)
		assert.Equal(t, 3.0, outcome.ScoreAwarded)
	})

	t.Run("missing trailing blanks score zero", func(t *testing.T) {
		outcome := Grade(q, models.FillBlankAnswer{Blanks: []string{"mitochondria"}})
		assert.False(t, *outcome.Correct)
		assert.InDelta(t, 1.0, outcome.ScoreAwarded, 1e-9)
	})
}

func TestGrade_MatchPairs(t *testing.T) {
	q := question(models.MatchPairs, 2, models.MatchPairsContent{
		Pairs: []models.MatchPair{
			{Left: "France", Right: "Paris"},
			{Left: "Italy", Right: "Rome"},
		},
	})

	outcome := Grade(q, models.MatchPairsAnswer{Pairs: map[string]string{
		"France": "Paris",
		"Italy":  "Rome",
	}})
	assert.True(t, *outcome.Correct)
	assert.Equal(t, 2.0, outcome.ScoreAwarded)

	// One crossed pair fails the whole question.
	outcome = Grade(q, models.MatchPairsAnswer{Pairs: map[string]string{
		"France": "Rome",
		"Italy":  "Paris",
	}})
	assert.False(t, *outcome.Correct)
	assert.Equal(t, 0.0, outcome.ScoreAwarded)
}

func TestGrade_Sequence(t *testing.T) {
	q := question(models.Sequence, 2, models.SequenceContent{
		Items:        []string{"boil", "chop", "serve"},
		CorrectOrder: []string{"chop", "boil", "serve"},
	})

	outcome := Grade(q, models.SequenceAnswer{Order: []string{"chop", "boil", "serve"}})
	assert.True(t, *outcome.Correct)
	assert.Equal(t, 2.0, outcome.ScoreAwarded)

	outcome = Grade(q, models.SequenceAnswer{Order: []string{"boil", "chop", "serve"}})
	assert.False(t, *outcome.Correct)
	assert.Equal(t, 0.0, outcome.ScoreAwarded)
}

func TestGrade_ShortAnswer(t *testing.T) {
	q := question(models.ShortAnswer, 1, models.ShortAnswerContent{
		AcceptedAnswers: []string{"photosynthesis", "light reaction"},
	})

	tests := []struct {
		name    string
		text    string
		correct bool
	}{
		{"exact match", "photosynthesis", true},
		{"case insensitive", "PhotoSynthesis", true},
		{"internal whitespace collapses", "  light   reaction ", true},
		{"alternate accepted answer", "light reaction", true},
		{"no match", "respiration", false},
		{"empty submission", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Grade(q, models.ShortAnswerSubmission{Text: tt.text})
			assert.Equal(t, tt.correct, *outcome.Correct)
		})
	}
}

func TestGrade_Numeric(t *testing.T) {
	q := question(models.Numeric, 1, models.NumericContent{Correct: 10, Tolerance: 0.5})

	tests := []struct {
		name    string
		value   float64
		correct bool
	}{
		{"exact", 10, true},
		{"within tolerance below", 9.6, true},
		{"within tolerance above", 10.4, true},
		{"at tolerance boundary", 10.5, true},
		{"outside tolerance", 10.6, false},
		{"far off", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Grade(q, models.NumericAnswer{Value: tt.value})
			assert.Equal(t, tt.correct, *outcome.Correct)
		})
	}
}

func TestGrade_Essay(t *testing.T) {
	q := question(models.Essay, 10, models.EssayContent{})

	outcome := Grade(q, models.EssayAnswer{Text: "A long considered response."})
	assert.Nil(t, outcome.Correct)
	assert.Equal(t, 0.0, outcome.ScoreAwarded)
	assert.True(t, outcome.NeedsManualGrade)

	// Unattempted essays need no manual grade.
	outcome = Grade(q, nil)
	assert.NotNil(t, outcome.Correct)
	assert.False(t, *outcome.Correct)
	assert.False(t, outcome.NeedsManualGrade)
}

func TestGrade_ImageChoice(t *testing.T) {
	q := question(models.ImageChoice, 1, models.SingleChoiceContent{
		Options:      []string{"img-a", "img-b"},
		CorrectIndex: 1,
	})
	q.ImageRef = "https://cdn.example.com/grid.png"

	outcome := Grade(q, models.ImageChoiceAnswer{Selected: "img-b"})
	assert.True(t, *outcome.Correct)
	assert.Equal(t, 1.0, outcome.ScoreAwarded)
}

func TestGrade_IsDeterministic(t *testing.T) {
	q := question(models.FillInBlank, 3, models.FillBlankContent{
		Blanks: []string{"one", "two", "three"},
	})
	answer := models.FillBlankAnswer{Blanks: []string{"one", "wrong", "three"}}

	first := Grade(q, answer)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Grade(q, answer))
	}
}
