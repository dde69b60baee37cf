package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/CourseLab-2025/quiz-engine/internal/kinds"
	"github.com/CourseLab-2025/quiz-engine/internal/models"
)

// DefaultTitle is used when a quiz envelope carries no title of its own.
const DefaultTitle = "Untitled Quiz"

// LegacyTitle is the title given to a legacy single-question payload
// wrapped into a one-question quiz.
const LegacyTitle = "Quiz Question"

// Normalize parses raw quiz JSON into the canonical Quiz aggregate.
//
// Classification: a payload with "type" and "question_text" fields is the
// legacy single-question shape and wraps into a one-question quiz; a
// payload with a "questions" field is a full quiz envelope; anything else
// is ErrUnrecognizedShape.
//
// Normalization is all-or-nothing: one invalid question fails the whole
// call, since a quiz with silently dropped questions changes scoring
// semantics. It performs no randomization; the recorded settings are
// applied later by the attempt state machine.
func Normalize(raw []byte) (*models.Quiz, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, ErrUnrecognizedShape
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrUnrecognizedShape
	}

	if _, hasType := obj["type"]; hasType {
		if _, hasText := obj["question_text"]; hasText {
			return normalizeLegacy(obj)
		}
	}
	if _, hasQuestions := obj["questions"]; hasQuestions {
		return normalizeEnvelope(obj)
	}
	return nil, ErrUnrecognizedShape
}

func normalizeLegacy(obj map[string]any) (*models.Quiz, error) {
	question, err := normalizeQuestion(obj, 0)
	if err != nil {
		return nil, err
	}
	return &models.Quiz{
		Title:     LegacyTitle,
		Questions: []models.Question{question},
	}, nil
}

func normalizeEnvelope(obj map[string]any) (*models.Quiz, error) {
	rawQuestions, ok := obj["questions"].([]any)
	if !ok {
		return nil, ErrUnrecognizedShape
	}

	quiz := &models.Quiz{
		Title:        strField(obj, "title"),
		Description:  strField(obj, "description"),
		Instructions: strField(obj, "instructions"),
		Questions:    make([]models.Question, 0, len(rawQuestions)),
	}
	if quiz.Title == "" {
		quiz.Title = DefaultTitle
	}
	if minutes, ok := numField(obj, "time_limit_minutes", "timeLimitMinutes", "time_limit", "timeLimit"); ok {
		quiz.TimeLimitMinutes = int(minutes)
	}
	if score, ok := numField(obj, "passing_score_percent", "passingScorePercent", "passing_score", "passingScore"); ok {
		quiz.PassingScorePercent = score
	}
	if settings, ok := obj["settings"].(map[string]any); ok {
		quiz.Settings = models.QuizSettings{
			RandomizeQuestions: boolField(settings, "randomize_questions", "randomizeQuestions"),
			RandomizeOptions:   boolField(settings, "randomize_options", "randomizeOptions"),
			AllowRetry:         boolField(settings, "allow_retry", "allowRetry"),
			ShowCorrectAnswers: boolField(settings, "show_correct_answers", "showCorrectAnswers"),
		}
	}

	for i, rq := range rawQuestions {
		qObj, ok := rq.(map[string]any)
		if !ok {
			return nil, &InvalidQuestionError{Index: i, Field: "question", Reason: "must be an object"}
		}
		question, err := normalizeQuestion(qObj, i)
		if err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	return quiz, nil
}

func normalizeQuestion(obj map[string]any, index int) (models.Question, error) {
	rawKind := strField(obj, "kind", "type", "question_type", "questionType")
	kind, ok := kinds.Resolve(rawKind)
	if !ok {
		return models.Question{}, &UnknownKindError{Value: rawKind}
	}

	question := models.Question{
		ID:          strField(obj, "id"),
		Kind:        kind,
		Prompt:      strField(obj, "prompt", "question_text", "questionText", "question", "text"),
		Points:      1,
		Hint:        strField(obj, "hint"),
		Explanation: strField(obj, "explanation"),
		ImageRef:    strField(obj, "image_ref", "imageRef", "image", "image_url", "imageUrl"),
	}
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if points, ok := numField(obj, "points"); ok {
		question.Points = points
	}
	if difficulty := strings.ToLower(strField(obj, "difficulty")); difficulty != "" {
		question.Difficulty = models.DifficultyLevel(difficulty)
	}
	if seconds, ok := numField(obj, "time_limit_seconds", "timeLimitSeconds", "time_limit", "timeLimit"); ok {
		question.TimeLimitSeconds = int(seconds)
	}

	content, err := normalizeContent(kind, obj, index)
	if err != nil {
		return models.Question{}, err
	}
	question.Content = content

	if verr := kinds.ValidateQuestion(&question); verr != nil {
		return models.Question{}, &InvalidQuestionError{Index: index, Field: verr.Field, Reason: verr.Message}
	}
	return question, nil
}

func normalizeContent(kind models.QuestionKind, obj map[string]any, index int) (any, error) {
	correct, hasCorrect := firstKey(obj,
		"correct", "correct_answer", "correctAnswer", "answer",
		"correct_answers", "correctAnswers", "accepted_answers", "acceptedAnswers")

	switch kind {
	case models.SingleChoice, models.ImageChoice:
		options, ok := stringSlice(firstVal(obj, "options", "choices"))
		if !ok {
			return nil, &InvalidQuestionError{Index: index, Field: "options", Reason: "must be a list of strings"}
		}
		if !hasCorrect {
			return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "is required"}
		}
		idx, err := resolveOption(correct, options, index)
		if err != nil {
			return nil, err
		}
		return models.SingleChoiceContent{Options: options, CorrectIndex: idx}, nil

	case models.MultiChoice:
		options, ok := stringSlice(firstVal(obj, "options", "choices"))
		if !ok {
			return nil, &InvalidQuestionError{Index: index, Field: "options", Reason: "must be a list of strings"}
		}
		if !hasCorrect {
			return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "is required"}
		}
		elements, ok := correct.([]any)
		if !ok {
			elements = []any{correct}
		}
		indexes := make([]int, 0, len(elements))
		for _, el := range elements {
			idx, err := resolveOption(el, options, index)
			if err != nil {
				return nil, err
			}
			indexes = append(indexes, idx)
		}
		return models.MultiChoiceContent{Options: options, CorrectIndexes: indexes}, nil

	case models.TrueFalse:
		if !hasCorrect {
			return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "is required"}
		}
		value, ok := boolVal(correct)
		if !ok {
			return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "must be a boolean"}
		}
		return models.TrueFalseContent{Correct: value}, nil

	case models.FillInBlank:
		blanksRaw, ok := obj["blanks"]
		if !ok {
			blanksRaw = correct
		}
		blanks, ok := stringSlice(blanksRaw)
		if !ok {
			return nil, &InvalidQuestionError{Index: index, Field: "blanks", Reason: "must be a list of expected strings"}
		}
		return models.FillBlankContent{Blanks: blanks}, nil

	case models.MatchPairs:
		pairs, err := pairSlice(obj["pairs"], index)
		if err != nil {
			return nil, err
		}
		return models.MatchPairsContent{Pairs: pairs}, nil

	case models.Sequence:
		items, ok := stringSlice(obj["items"])
		if !ok {
			return nil, &InvalidQuestionError{Index: index, Field: "items", Reason: "must be a list of strings"}
		}
		if !hasCorrect {
			return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "is required"}
		}
		order, err := resolveOrder(correct, items, index)
		if err != nil {
			return nil, err
		}
		return models.SequenceContent{Items: items, CorrectOrder: order}, nil

	case models.ShortAnswer:
		if !hasCorrect {
			return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "is required"}
		}
		if s, ok := strVal(correct); ok {
			return models.ShortAnswerContent{AcceptedAnswers: []string{s}}, nil
		}
		accepted, ok := stringSlice(correct)
		if !ok {
			return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "must be a string or list of strings"}
		}
		return models.ShortAnswerContent{AcceptedAnswers: accepted}, nil

	case models.Essay:
		// Essays carry no answer key; a stray "correct" field in old
		// content is ignored rather than rejected.
		return models.EssayContent{}, nil

	case models.Numeric:
		if !hasCorrect {
			return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "is required"}
		}
		value, ok := floatVal(correct)
		if !ok {
			return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "must be a number"}
		}
		content := models.NumericContent{Correct: value}
		if tolerance, ok := numField(obj, "tolerance"); ok {
			content.Tolerance = tolerance
		}
		return content, nil
	}

	return nil, &UnknownKindError{Value: string(kind)}
}

// resolveOption maps a raw correct-answer element (index or option text)
// onto an option index. Text matches exactly first, then case-insensitively
// when that is unambiguous.
func resolveOption(v any, options []string, index int) (int, error) {
	if f, ok := v.(float64); ok {
		idx := int(f)
		if float64(idx) != f {
			return 0, &InvalidQuestionError{Index: index, Field: "correct", Reason: "index must be an integer"}
		}
		return idx, nil
	}
	s, ok := strVal(v)
	if !ok {
		return 0, &InvalidQuestionError{Index: index, Field: "correct", Reason: "must be an option index or option text"}
	}
	for i, opt := range options {
		if opt == s {
			return i, nil
		}
	}
	match := -1
	for i, opt := range options {
		if strings.EqualFold(opt, s) {
			if match >= 0 {
				return 0, &InvalidQuestionError{Index: index, Field: "correct", Reason: "matches more than one option"}
			}
			match = i
		}
	}
	if match < 0 {
		return 0, &InvalidQuestionError{Index: index, Field: "correct", Reason: "does not resolve to an option"}
	}
	return match, nil
}

// resolveOrder maps a raw correct ordering (item texts or item indexes)
// onto item texts.
func resolveOrder(v any, items []string, index int) ([]string, error) {
	elements, ok := v.([]any)
	if !ok {
		return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "must be a list"}
	}
	order := make([]string, 0, len(elements))
	for _, el := range elements {
		if f, ok := el.(float64); ok {
			idx := int(f)
			if float64(idx) != f || idx < 0 || idx >= len(items) {
				return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "index does not resolve to an item"}
			}
			order = append(order, items[idx])
			continue
		}
		s, ok := strVal(el)
		if !ok {
			return nil, &InvalidQuestionError{Index: index, Field: "correct", Reason: "must contain item texts or indexes"}
		}
		order = append(order, s)
	}
	return order, nil
}

func pairSlice(v any, index int) ([]models.MatchPair, error) {
	elements, ok := v.([]any)
	if !ok {
		return nil, &InvalidQuestionError{Index: index, Field: "pairs", Reason: "must be a list of pairs"}
	}
	pairs := make([]models.MatchPair, 0, len(elements))
	for _, el := range elements {
		switch p := el.(type) {
		case map[string]any:
			left := strField(p, "left", "l")
			right := strField(p, "right", "r")
			pairs = append(pairs, models.MatchPair{Left: left, Right: right})
		case []any:
			if len(p) != 2 {
				return nil, &InvalidQuestionError{Index: index, Field: "pairs", Reason: "pair must have exactly two sides"}
			}
			left, lok := strVal(p[0])
			right, rok := strVal(p[1])
			if !lok || !rok {
				return nil, &InvalidQuestionError{Index: index, Field: "pairs", Reason: "pair sides must be strings"}
			}
			pairs = append(pairs, models.MatchPair{Left: left, Right: right})
		default:
			return nil, &InvalidQuestionError{Index: index, Field: "pairs", Reason: "pair must be an object or two-element list"}
		}
	}
	return pairs, nil
}

// ===== RAW FIELD HELPERS =====

func firstKey(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstVal(m map[string]any, keys ...string) any {
	v, _ := firstKey(m, keys...)
	return v
}

func strVal(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func strField(m map[string]any, keys ...string) string {
	if v, ok := firstKey(m, keys...); ok {
		if s, ok := strVal(v); ok {
			return s
		}
	}
	return ""
}

func numField(m map[string]any, keys ...string) (float64, bool) {
	if v, ok := firstKey(m, keys...); ok {
		return floatVal(v)
	}
	return 0, false
}

func boolField(m map[string]any, keys ...string) bool {
	if v, ok := firstKey(m, keys...); ok {
		if b, ok := boolVal(v); ok {
			return b
		}
	}
	return false
}

func boolVal(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func floatVal(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

func stringSlice(v any) ([]string, bool) {
	elements, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		s, ok := strVal(el)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
