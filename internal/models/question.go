package models

type QuestionKind string

const (
	SingleChoice QuestionKind = "single_choice"
	MultiChoice  QuestionKind = "multi_choice"
	TrueFalse    QuestionKind = "true_false"
	FillInBlank  QuestionKind = "fill_in_blank"
	MatchPairs   QuestionKind = "match_pairs"
	Sequence     QuestionKind = "sequence"
	ShortAnswer  QuestionKind = "short_answer"
	Essay        QuestionKind = "essay"
	Numeric      QuestionKind = "numeric"
	ImageChoice  QuestionKind = "image_choice"
)

// AllKinds is the closed set of supported question kinds.
var AllKinds = []QuestionKind{
	SingleChoice, MultiChoice, TrueFalse, FillInBlank, MatchPairs,
	Sequence, ShortAnswer, Essay, Numeric, ImageChoice,
}

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Question is the canonical, normalized form of one piece of quiz content.
// Content holds the kind-specific payload; it is always one of the
// *Content structs below and has already passed the kind registry's
// structural validation by the time a Question exists.
type Question struct {
	ID               string          `json:"id"`
	Kind             QuestionKind    `json:"kind" validate:"required,question_kind"`
	Prompt           string          `json:"prompt" validate:"required"`
	Points           float64         `json:"points" validate:"gt=0"`
	Difficulty       DifficultyLevel `json:"difficulty,omitempty" validate:"omitempty,difficulty_level"`
	TimeLimitSeconds int             `json:"time_limit_seconds,omitempty" validate:"min=0"`
	Hint             string          `json:"hint,omitempty"`
	Explanation      string          `json:"explanation,omitempty"`
	ImageRef         string          `json:"image_ref,omitempty"`

	Content any `json:"-"`
}

// Kind-specific payloads. Choice payloads keep options in authored order;
// correct answers are stored as indexes into that order.

type SingleChoiceContent struct {
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

type MultiChoiceContent struct {
	Options        []string `json:"options"`
	CorrectIndexes []int    `json:"correct_indexes"`
}

type TrueFalseContent struct {
	Correct bool `json:"correct"`
}

// FillBlankContent carries one expected string per blank, in blank order.
type FillBlankContent struct {
	Blanks []string `json:"blanks"`
}

type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type MatchPairsContent struct {
	Pairs []MatchPair `json:"pairs"`
}

// SequenceContent keeps Items in authored (presentation) order and
// CorrectOrder as the same items in their correct position.
type SequenceContent struct {
	Items        []string `json:"items"`
	CorrectOrder []string `json:"correct_order"`
}

type ShortAnswerContent struct {
	AcceptedAnswers []string `json:"accepted_answers"`
}

// EssayContent has no machine-gradable payload; essays are graded by hand.
type EssayContent struct{}

type NumericContent struct {
	Correct   float64 `json:"correct"`
	Tolerance float64 `json:"tolerance"`
}

// IsAutoGradable reports whether the engine can grade this kind without
// human intervention.
func (k QuestionKind) IsAutoGradable() bool {
	return k != Essay
}

// Options returns the option list for choice kinds, nil otherwise.
func (q *Question) Options() []string {
	switch c := q.Content.(type) {
	case SingleChoiceContent:
		return c.Options
	case MultiChoiceContent:
		return c.Options
	}
	return nil
}
