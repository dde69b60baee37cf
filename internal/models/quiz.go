package models

import "encoding/json"

// Quiz is the normalized aggregate the rest of the engine operates on.
// It is immutable after normalization and safe to share read-only across
// concurrent attempts.
type Quiz struct {
	Title               string       `json:"title" validate:"required"`
	Description         string       `json:"description,omitempty"`
	Instructions        string       `json:"instructions,omitempty"`
	TimeLimitMinutes    int          `json:"time_limit_minutes,omitempty" validate:"min=0"`
	PassingScorePercent float64      `json:"passing_score_percent,omitempty" validate:"min=0,max=100"`
	Questions           []Question   `json:"questions" validate:"dive"`
	Settings            QuizSettings `json:"settings"`
}

type QuizSettings struct {
	RandomizeQuestions bool `json:"randomize_questions"`
	RandomizeOptions   bool `json:"randomize_options"`
	AllowRetry         bool `json:"allow_retry"`
	ShowCorrectAnswers bool `json:"show_correct_answers"`
}

// TotalPoints sums the points of every question.
func (q *Quiz) TotalPoints() float64 {
	var total float64
	for i := range q.Questions {
		total += q.Questions[i].Points
	}
	return total
}

// AutoGradablePoints sums the points of questions the engine can grade
// itself, i.e. everything except essays.
func (q *Quiz) AutoGradablePoints() float64 {
	var total float64
	for i := range q.Questions {
		if q.Questions[i].Kind.IsAutoGradable() {
			total += q.Questions[i].Points
		}
	}
	return total
}

// QuestionByID returns the question with the given id, or nil.
func (q *Quiz) QuestionByID(id string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// MarshalJSON emits the canonical raw envelope shape: base question fields
// plus the kind-specific payload flattened alongside them, with the answer
// key under "correct". Normalizing this output yields an equal Quiz.
func (q Question) MarshalJSON() ([]byte, error) {
	type base Question
	out := struct {
		base
		Options   []string    `json:"options,omitempty"`
		Blanks    []string    `json:"blanks,omitempty"`
		Pairs     []MatchPair `json:"pairs,omitempty"`
		Items     []string    `json:"items,omitempty"`
		Correct   any         `json:"correct,omitempty"`
		Tolerance *float64    `json:"tolerance,omitempty"`
	}{base: base(q)}

	switch c := q.Content.(type) {
	case SingleChoiceContent:
		out.Options = c.Options
		out.Correct = c.CorrectIndex
	case MultiChoiceContent:
		out.Options = c.Options
		out.Correct = c.CorrectIndexes
	case TrueFalseContent:
		out.Correct = c.Correct
	case FillBlankContent:
		out.Blanks = c.Blanks
	case MatchPairsContent:
		out.Pairs = c.Pairs
	case SequenceContent:
		out.Items = c.Items
		out.Correct = c.CorrectOrder
	case ShortAnswerContent:
		out.Correct = c.AcceptedAnswers
	case NumericContent:
		out.Correct = c.Correct
		out.Tolerance = &c.Tolerance
	case EssayContent:
		// no payload
	}

	return json.Marshal(out)
}
