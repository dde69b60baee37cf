package kinds

import (
	"strings"

	apperrors "github.com/CourseLab-2025/quiz-engine/internal/errors"
	"github.com/CourseLab-2025/quiz-engine/internal/models"
)

// aliases maps every kind string the content ecosystem has historically
// persisted onto its canonical kind. Lookup is case-insensitive and treats
// '-', ' ' and '_' as the same separator. The table is static, process-wide
// and read-only.
var aliases = map[string]models.QuestionKind{
	// single_choice: "mcq" and "multiple_choice" historically meant a
	// single-select question, not multi-select.
	"single_choice":   models.SingleChoice,
	"mcq":             models.SingleChoice,
	"multiple_choice": models.SingleChoice,
	"single_select":   models.SingleChoice,
	"radio":           models.SingleChoice,
	"choice":          models.SingleChoice,

	"multi_choice":      models.MultiChoice,
	"msq":               models.MultiChoice,
	"multi_select":      models.MultiChoice,
	"multiple_select":   models.MultiChoice,
	"multiple_answer":   models.MultiChoice,
	"multiple_response": models.MultiChoice,
	"checkbox":          models.MultiChoice,

	"true_false":    models.TrueFalse,
	"truefalse":     models.TrueFalse,
	"true_or_false": models.TrueFalse,
	"tf":            models.TrueFalse,
	"boolean":       models.TrueFalse,

	"fill_in_blank":     models.FillInBlank,
	"fill_blank":        models.FillInBlank,
	"fill_in_the_blank": models.FillInBlank,
	"fib":               models.FillInBlank,
	"cloze":             models.FillInBlank,

	"match_pairs":         models.MatchPairs,
	"matching":            models.MatchPairs,
	"match":               models.MatchPairs,
	"match_the_following": models.MatchPairs,

	"sequence": models.Sequence,
	"ordering": models.Sequence,
	"order":    models.Sequence,
	"arrange":  models.Sequence,
	"sort":     models.Sequence,

	"short_answer": models.ShortAnswer,
	"short_text":   models.ShortAnswer,
	"sa":           models.ShortAnswer,
	"text":         models.ShortAnswer,

	"essay":       models.Essay,
	"long_answer": models.Essay,
	"open":        models.Essay,
	"free_text":   models.Essay,
	"paragraph":   models.Essay,

	"numeric":   models.Numeric,
	"numerical": models.Numeric,
	"number":    models.Numeric,
	"num":       models.Numeric,

	"image_choice":   models.ImageChoice,
	"image":          models.ImageChoice,
	"picture_choice": models.ImageChoice,
	"image_mcq":      models.ImageChoice,
}

// Resolve maps a raw kind string onto a canonical kind.
func Resolve(raw string) (models.QuestionKind, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	kind, ok := aliases[key]
	return kind, ok
}

// ValidateQuestion checks the base fields plus the kind-specific payload
// invariants of a normalized question.
func ValidateQuestion(q *models.Question) *apperrors.ValidationError {
	if strings.TrimSpace(q.Prompt) == "" {
		return apperrors.NewValidationError("prompt", "is required", q.Prompt)
	}
	if q.Points <= 0 {
		return apperrors.NewValidationError("points", "must be positive", q.Points)
	}
	if q.TimeLimitSeconds < 0 {
		return apperrors.NewValidationError("time_limit_seconds", "cannot be negative", q.TimeLimitSeconds)
	}
	switch q.Difficulty {
	case "", models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		return apperrors.NewValidationError("difficulty", "must be easy, medium, or hard", q.Difficulty)
	}
	if q.Kind == models.ImageChoice && q.ImageRef == "" {
		return apperrors.NewValidationError("image_ref", "is required for image choice questions", nil)
	}
	return ValidateContent(q.Kind, q.Content)
}

// ValidateContent checks the payload invariants for one kind.
func ValidateContent(kind models.QuestionKind, content any) *apperrors.ValidationError {
	switch kind {
	case models.SingleChoice, models.ImageChoice:
		c, ok := content.(models.SingleChoiceContent)
		if !ok {
			return wrongPayload(kind)
		}
		return validateSingleChoice(c)
	case models.MultiChoice:
		c, ok := content.(models.MultiChoiceContent)
		if !ok {
			return wrongPayload(kind)
		}
		return validateMultiChoice(c)
	case models.TrueFalse:
		if _, ok := content.(models.TrueFalseContent); !ok {
			return wrongPayload(kind)
		}
		return nil
	case models.FillInBlank:
		c, ok := content.(models.FillBlankContent)
		if !ok {
			return wrongPayload(kind)
		}
		return validateFillBlank(c)
	case models.MatchPairs:
		c, ok := content.(models.MatchPairsContent)
		if !ok {
			return wrongPayload(kind)
		}
		return validateMatchPairs(c)
	case models.Sequence:
		c, ok := content.(models.SequenceContent)
		if !ok {
			return wrongPayload(kind)
		}
		return validateSequence(c)
	case models.ShortAnswer:
		c, ok := content.(models.ShortAnswerContent)
		if !ok {
			return wrongPayload(kind)
		}
		return validateShortAnswer(c)
	case models.Essay:
		if _, ok := content.(models.EssayContent); !ok {
			return wrongPayload(kind)
		}
		return nil
	case models.Numeric:
		c, ok := content.(models.NumericContent)
		if !ok {
			return wrongPayload(kind)
		}
		return validateNumeric(c)
	default:
		return apperrors.NewValidationError("kind", "unsupported question kind", string(kind))
	}
}

func wrongPayload(kind models.QuestionKind) *apperrors.ValidationError {
	return apperrors.NewValidationError("content", "payload does not match question kind", string(kind))
}

func validateOptions(options []string) *apperrors.ValidationError {
	if len(options) < 2 {
		return apperrors.NewValidationError("options", "must have at least 2 options", len(options))
	}
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if opt == "" {
			return apperrors.NewValidationError("options", "option text cannot be empty", nil)
		}
		if seen[opt] {
			return apperrors.NewValidationError("options", "options must be unique", opt)
		}
		seen[opt] = true
	}
	return nil
}

func validateSingleChoice(c models.SingleChoiceContent) *apperrors.ValidationError {
	if err := validateOptions(c.Options); err != nil {
		return err
	}
	if c.CorrectIndex < 0 || c.CorrectIndex >= len(c.Options) {
		return apperrors.NewValidationError("correct", "must resolve to exactly one option", c.CorrectIndex)
	}
	return nil
}

func validateMultiChoice(c models.MultiChoiceContent) *apperrors.ValidationError {
	if err := validateOptions(c.Options); err != nil {
		return err
	}
	if len(c.CorrectIndexes) == 0 {
		return apperrors.NewValidationError("correct", "must have at least 1 correct option", nil)
	}
	seen := make(map[int]bool, len(c.CorrectIndexes))
	for _, idx := range c.CorrectIndexes {
		if idx < 0 || idx >= len(c.Options) {
			return apperrors.NewValidationError("correct", "does not resolve to an option", idx)
		}
		if seen[idx] {
			return apperrors.NewValidationError("correct", "contains a duplicate option", idx)
		}
		seen[idx] = true
	}
	return nil
}

func validateFillBlank(c models.FillBlankContent) *apperrors.ValidationError {
	if len(c.Blanks) == 0 {
		return apperrors.NewValidationError("blanks", "must have at least 1 blank", nil)
	}
	for i, expected := range c.Blanks {
		if strings.TrimSpace(expected) == "" {
			return apperrors.NewValidationError("blanks", "expected answer cannot be empty", i)
		}
	}
	return nil
}

func validateMatchPairs(c models.MatchPairsContent) *apperrors.ValidationError {
	if len(c.Pairs) < 2 {
		return apperrors.NewValidationError("pairs", "must have at least 2 pairs", len(c.Pairs))
	}
	lefts := make(map[string]bool, len(c.Pairs))
	rights := make(map[string]bool, len(c.Pairs))
	for _, pair := range c.Pairs {
		if pair.Left == "" || pair.Right == "" {
			return apperrors.NewValidationError("pairs", "pair sides cannot be empty", pair)
		}
		if lefts[pair.Left] {
			return apperrors.NewValidationError("pairs", "left items must be unique", pair.Left)
		}
		if rights[pair.Right] {
			return apperrors.NewValidationError("pairs", "right items must be unique", pair.Right)
		}
		lefts[pair.Left] = true
		rights[pair.Right] = true
	}
	return nil
}

func validateSequence(c models.SequenceContent) *apperrors.ValidationError {
	if len(c.Items) < 2 {
		return apperrors.NewValidationError("items", "must have at least 2 items", len(c.Items))
	}
	items := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		if item == "" {
			return apperrors.NewValidationError("items", "item text cannot be empty", nil)
		}
		if items[item] {
			return apperrors.NewValidationError("items", "items must be unique", item)
		}
		items[item] = true
	}
	if len(c.CorrectOrder) != len(c.Items) {
		return apperrors.NewValidationError("correct", "must include all items exactly once", len(c.CorrectOrder))
	}
	seen := make(map[string]bool, len(c.CorrectOrder))
	for _, item := range c.CorrectOrder {
		if !items[item] {
			return apperrors.NewValidationError("correct", "references an item not in the question", item)
		}
		if seen[item] {
			return apperrors.NewValidationError("correct", "contains a duplicate item", item)
		}
		seen[item] = true
	}
	return nil
}

func validateShortAnswer(c models.ShortAnswerContent) *apperrors.ValidationError {
	if len(c.AcceptedAnswers) == 0 {
		return apperrors.NewValidationError("correct", "must have at least 1 accepted answer", nil)
	}
	for i, answer := range c.AcceptedAnswers {
		if strings.TrimSpace(answer) == "" {
			return apperrors.NewValidationError("correct", "accepted answer cannot be empty", i)
		}
	}
	return nil
}

func validateNumeric(c models.NumericContent) *apperrors.ValidationError {
	if c.Tolerance < 0 {
		return apperrors.NewValidationError("tolerance", "cannot be negative", c.Tolerance)
	}
	return nil
}
