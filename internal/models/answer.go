package models

// Answer is a submitted answer for a single question. Each question kind
// has exactly one answer variant; a question with no entry in an attempt's
// answer map is unattempted, which is distinct from an empty submission.
//
// Choice, sequence and match answers carry option/item text rather than
// presentation indexes, so they stay meaningful regardless of how the
// attempt shuffled options on screen.
type Answer interface {
	AnswerKind() QuestionKind
}

type SingleChoiceAnswer struct {
	Selected string `json:"selected"`
}

type MultiChoiceAnswer struct {
	Selected []string `json:"selected"`
}

type TrueFalseAnswer struct {
	Value bool `json:"value"`
}

// FillBlankAnswer holds one submitted string per blank, in blank order.
type FillBlankAnswer struct {
	Blanks []string `json:"blanks"`
}

// MatchPairsAnswer maps each left item to the chosen right item.
type MatchPairsAnswer struct {
	Pairs map[string]string `json:"pairs"`
}

type SequenceAnswer struct {
	Order []string `json:"order"`
}

type ShortAnswerSubmission struct {
	Text string `json:"text"`
}

type EssayAnswer struct {
	Text      string `json:"text"`
	WordCount int    `json:"word_count,omitempty"`
}

type NumericAnswer struct {
	Value float64 `json:"value"`
}

type ImageChoiceAnswer struct {
	Selected string `json:"selected"`
}

func (SingleChoiceAnswer) AnswerKind() QuestionKind    { return SingleChoice }
func (MultiChoiceAnswer) AnswerKind() QuestionKind     { return MultiChoice }
func (TrueFalseAnswer) AnswerKind() QuestionKind       { return TrueFalse }
func (FillBlankAnswer) AnswerKind() QuestionKind       { return FillInBlank }
func (MatchPairsAnswer) AnswerKind() QuestionKind      { return MatchPairs }
func (SequenceAnswer) AnswerKind() QuestionKind        { return Sequence }
func (ShortAnswerSubmission) AnswerKind() QuestionKind { return ShortAnswer }
func (EssayAnswer) AnswerKind() QuestionKind           { return Essay }
func (NumericAnswer) AnswerKind() QuestionKind         { return Numeric }
func (ImageChoiceAnswer) AnswerKind() QuestionKind     { return ImageChoice }
