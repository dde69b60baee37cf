package attempt

import (
	"math/rand"
	"sync"
	"time"

	"github.com/CourseLab-2025/quiz-engine/internal/grading"
	"github.com/CourseLab-2025/quiz-engine/internal/models"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Attempt is one learner's run through a quiz. The quiz is shared
// read-only; the attempt exclusively owns its answer map. All transitions
// are serialized through a single mutex, so one attempt supports at most
// one writer at a time, and a completed attempt is immutable.
type Attempt struct {
	mu sync.Mutex

	quiz   *models.Quiz
	status Status
	seed   int64

	// Presentation permutations, fixed once at Start for the lifetime of
	// the attempt. questionOrder maps presentation position to question
	// index; optionOrders maps question id to its option permutation.
	questionOrder []int
	optionOrders  map[string][]int

	answers      map[string]models.Answer
	answerOrder  []string
	currentIndex int
	revealed     map[string]struct{}

	startedAt   time.Time
	completedAt *time.Time
	summary     *grading.Summary
}

type Option func(*Attempt)

// WithSeed fixes the shuffle seed so an attempt's presentation order is
// reproducible.
func WithSeed(seed int64) Option {
	return func(a *Attempt) { a.seed = seed }
}

// New creates an attempt over an already-normalized quiz. The engine never
// constructs an attempt from raw content; normalization failures must be
// handled before this point.
func New(quiz *models.Quiz, opts ...Option) *Attempt {
	a := &Attempt{
		quiz:     quiz,
		status:   StatusNotStarted,
		seed:     time.Now().UnixNano(),
		answers:  make(map[string]models.Answer),
		revealed: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start moves the attempt to InProgress and, when the quiz asks for it,
// fixes the question and per-question option permutations. Permutations
// are generated once here, never re-rolled on navigation.
func (a *Attempt) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusNotStarted {
		return ErrInvalidState
	}

	rng := rand.New(rand.NewSource(a.seed))

	a.questionOrder = identity(len(a.quiz.Questions))
	if a.quiz.Settings.RandomizeQuestions {
		rng.Shuffle(len(a.questionOrder), func(i, j int) {
			a.questionOrder[i], a.questionOrder[j] = a.questionOrder[j], a.questionOrder[i]
		})
	}

	a.optionOrders = make(map[string][]int)
	if a.quiz.Settings.RandomizeOptions {
		for i := range a.quiz.Questions {
			q := &a.quiz.Questions[i]
			options := q.Options()
			if len(options) == 0 {
				continue
			}
			order := identity(len(options))
			rng.Shuffle(len(order), func(x, y int) {
				order[x], order[y] = order[y], order[x]
			})
			a.optionOrders[q.ID] = order
		}
	}

	a.startedAt = time.Now()
	a.status = StatusInProgress
	return nil
}

// SetAnswer records or overwrites the answer for a question. It does not
// advance the current index. The answer variant must match the question's
// kind, which keeps grading total by construction.
func (a *Attempt) SetAnswer(questionID string, answer models.Answer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusInProgress {
		return ErrInvalidState
	}
	question := a.quiz.QuestionByID(questionID)
	if question == nil {
		return ErrUnknownQuestion
	}
	if answer == nil || answer.AnswerKind() != question.Kind {
		return ErrAnswerKindMismatch
	}

	if _, seen := a.answers[questionID]; !seen {
		a.answerOrder = append(a.answerOrder, questionID)
	}
	a.answers[questionID] = answer
	return nil
}

// GoTo jumps to a presentation position, rejecting out-of-range indexes.
func (a *Attempt) GoTo(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusInProgress {
		return ErrInvalidState
	}
	if index < 0 || index >= len(a.quiz.Questions) {
		return ErrOutOfRange
	}
	a.currentIndex = index
	return nil
}

// Next advances one question, clamping at the end. Navigation is always
// legal in progress; there is no forced-answer-before-advance policy.
func (a *Attempt) Next() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusInProgress {
		return ErrInvalidState
	}
	if a.currentIndex < len(a.quiz.Questions)-1 {
		a.currentIndex++
	}
	return nil
}

// Previous steps back one question, clamping at the start.
func (a *Attempt) Previous() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusInProgress {
		return ErrInvalidState
	}
	if a.currentIndex > 0 {
		a.currentIndex--
	}
	return nil
}

// RevealExplanation marks a question's explanation as disclosed. It is
// idempotent and allowed while in progress or after completion.
func (a *Attempt) RevealExplanation(questionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == StatusNotStarted {
		return ErrInvalidState
	}
	if a.quiz.QuestionByID(questionID) == nil {
		return ErrUnknownQuestion
	}
	a.revealed[questionID] = struct{}{}
	return nil
}

// Complete finishes the attempt and computes the final score. Unattempted
// questions score zero; essay points stay out of the denominator until a
// manual grade arrives out-of-band.
func (a *Attempt) Complete() (grading.Summary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusInProgress {
		return grading.Summary{}, ErrInvalidState
	}

	summary := grading.Score(a.quiz, a.answers)
	now := time.Now()
	a.completedAt = &now
	a.summary = &summary
	a.status = StatusCompleted
	return summary, nil
}

// Retry produces a fresh attempt over the same quiz with an empty answer
// map. The completed attempt is left untouched. The new attempt derives
// its seed from this one so repeated retries stay reproducible under a
// fixed initial seed.
func (a *Attempt) Retry() (*Attempt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusCompleted {
		return nil, ErrInvalidState
	}
	if !a.quiz.Settings.AllowRetry {
		return nil, ErrRetryNotAllowed
	}
	return New(a.quiz, WithSeed(a.seed+1)), nil
}

// ===== READ ACCESSORS =====

func (a *Attempt) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Attempt) Quiz() *models.Quiz {
	return a.quiz
}

func (a *Attempt) CurrentIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentIndex
}

func (a *Attempt) StartedAt() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startedAt
}

func (a *Attempt) CompletedAt() *time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.completedAt
}

// Answer returns the submitted answer for a question, if any.
func (a *Attempt) Answer(questionID string) (models.Answer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	answer, ok := a.answers[questionID]
	return answer, ok
}

// Answers returns a copy of the submitted answers keyed by question id.
func (a *Attempt) Answers() map[string]models.Answer {
	a.mu.Lock()
	defer a.mu.Unlock()
	answers := make(map[string]models.Answer, len(a.answers))
	for id, answer := range a.answers {
		answers[id] = answer
	}
	return answers
}

// Summary returns the final score once the attempt is completed.
func (a *Attempt) Summary() (grading.Summary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.summary == nil {
		return grading.Summary{}, false
	}
	return *a.summary, true
}

// QuestionAt returns the question at a presentation position, honoring the
// fixed question permutation. Before Start the authored order applies.
func (a *Attempt) QuestionAt(index int) (*models.Question, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.questionAtLocked(index)
}

func (a *Attempt) questionAtLocked(index int) (*models.Question, error) {
	if index < 0 || index >= len(a.quiz.Questions) {
		return nil, ErrOutOfRange
	}
	if a.questionOrder != nil {
		index = a.questionOrder[index]
	}
	return &a.quiz.Questions[index], nil
}

// PresentedOptions returns a question's options in presentation order,
// honoring the fixed per-question option permutation.
func (a *Attempt) PresentedOptions(questionID string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.presentedOptionsLocked(questionID)
}

func (a *Attempt) presentedOptionsLocked(questionID string) ([]string, error) {
	question := a.quiz.QuestionByID(questionID)
	if question == nil {
		return nil, ErrUnknownQuestion
	}
	options := question.Options()
	order, ok := a.optionOrders[questionID]
	if !ok {
		return options, nil
	}
	presented := make([]string, len(options))
	for pos, idx := range order {
		presented[pos] = options[idx]
	}
	return presented, nil
}

// Snapshot is the read-only view handed to the presentation collaborator.
type Snapshot struct {
	Status              Status
	CurrentIndex        int
	Question            *models.Question
	Options             []string
	AnsweredIDs         []string
	RevealedIDs         []string
	RunningScorePercent *float64
}

// Snapshot captures the current attempt state. The running score is only
// exposed when the quiz is configured to show correct answers.
func (a *Attempt) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		Status:       a.status,
		CurrentIndex: a.currentIndex,
		AnsweredIDs:  append([]string(nil), a.answerOrder...),
	}
	for id := range a.revealed {
		snap.RevealedIDs = append(snap.RevealedIDs, id)
	}
	if question, err := a.questionAtLocked(a.currentIndex); err == nil {
		snap.Question = question
		if options, err := a.presentedOptionsLocked(question.ID); err == nil {
			snap.Options = options
		}
	}
	if a.quiz.Settings.ShowCorrectAnswers && a.status != StatusNotStarted {
		summary := grading.Score(a.quiz, a.answers)
		snap.RunningScorePercent = &summary.ScorePercent
	}
	return snap
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
