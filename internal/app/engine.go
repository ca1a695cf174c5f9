package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"personality-quiz/internal/domain"
)

// QuizRepository loads quiz content by name (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, name string) (domain.Quiz, error)
}

// ProgressStore is the key-value persistence capability progress is synced to.
// Load reports ok=false when nothing is stored under key.
type ProgressStore interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

const resultSeparator = " | "

// Engine drives one user's traversal through a quiz: it tracks the current
// question, accumulates profile scores, mirrors progress to a ProgressStore and
// resolves the winning profiles once every question has been answered.
//
// An Engine has a single owner and is not safe for concurrent use.
type Engine struct {
	store  ProgressStore
	key    string
	logger *slog.Logger

	status   domain.Status
	quiz     *domain.Quiz
	total    int
	current  *domain.Question
	progress domain.Progress
	result   string
	winners  []domain.ResultProfile
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for persistence failures and recoveries.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine builds an engine persisting under key. An empty key falls back to domain.StorageKey.
func NewEngine(store ProgressStore, key string, opts ...EngineOption) *Engine {
	if key == "" {
		key = domain.StorageKey
	}
	e := &Engine{
		store:    store,
		key:      key,
		logger:   slog.Default(),
		status:   domain.StatusLoading,
		progress: domain.NewProgress(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load fetches the quiz once and initializes the session with it. A failed
// fetch leaves the engine unavailable; it is not retried.
func (e *Engine) Load(ctx context.Context, quizzes QuizRepository, name string) error {
	quiz, err := quizzes.GetQuiz(ctx, name)
	if err != nil {
		e.status = domain.StatusUnavailable
		e.quiz = nil
		e.current = nil
		e.logger.Warn("quiz fetch failed", "quiz", name, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrQuizUnavailable, err)
	}
	e.Initialize(ctx, quiz)
	return nil
}

// Initialize stores quiz and restores persisted progress when a valid record exists.
func (e *Engine) Initialize(ctx context.Context, quiz domain.Quiz) {
	e.quiz = &quiz
	e.total = len(quiz.Questions)
	e.current = nil
	e.progress = domain.NewProgress()
	e.result = ""
	e.winners = nil

	if e.total == 0 {
		e.status = domain.StatusEmpty
		return
	}

	e.restore(ctx)

	if e.progress.Finished {
		e.status = domain.StatusFinished
		e.computeResult()
		return
	}
	e.status = domain.StatusInProgress
	e.current = &e.quiz.Questions[e.progress.CurrentIndex]
}

// restore replaces the fresh progress with the persisted record. Corrupt
// records are deleted and never reported to the caller.
func (e *Engine) restore(ctx context.Context) {
	raw, ok, err := e.store.Load(ctx, e.key)
	if err != nil {
		e.logger.Warn("load progress failed", "key", e.key, "error", err)
		return
	}
	if !ok {
		return
	}

	progress, outcome, err := decodeProgress(raw)
	switch outcome {
	case decodeAbsent:
		return
	case decodeCorrupt:
		e.logger.Info("discarding corrupt progress", "key", e.key, "error", err)
		e.removePersisted(ctx)
		e.progress = domain.NewProgress()
		return
	}

	progress.CurrentIndex = clampIndex(progress.CurrentIndex, e.total)
	e.progress = progress
}

func clampIndex(index, total int) int {
	if index < 0 {
		return 0
	}
	if index >= total {
		if total > 0 {
			return total - 1
		}
		return 0
	}
	return index
}

// SubmitAnswer records optionID as the answer to questionID, adds the option's
// profile points and moves to the next question. It reports false when the
// submission was ignored because the quiz is finished or has no current question.
//
// An option id that does not belong to the current question is recorded
// without contributing any points.
func (e *Engine) SubmitAnswer(ctx context.Context, questionID, optionID string) bool {
	if e.progress.Finished || e.current == nil {
		return false
	}

	e.progress.AnswersByQuestion[questionID] = optionID

	if opt, ok := e.current.FindOption(optionID); ok {
		for _, w := range opt.ProfileScores {
			e.progress.ScoreByProfile.Add(w.Profile, w.Score)
		}
	}

	e.advance(ctx)
	return true
}

func (e *Engine) advance(ctx context.Context) {
	next := e.progress.CurrentIndex + 1
	if next < e.total {
		e.progress.CurrentIndex = next
		e.current = &e.quiz.Questions[next]
		e.persist(ctx)
		return
	}

	e.progress.Finished = true
	e.status = domain.StatusFinished
	e.current = nil
	e.computeResult()
	e.persist(ctx)
}

// computeResult picks every profile tied at the highest score, keeping the order
// in which profiles were first scored, and renders their result entries.
func (e *Engine) computeResult() {
	e.result = ""
	e.winners = nil

	ranked := e.progress.ScoreByProfile.Entries()
	if len(ranked) == 0 || e.quiz == nil {
		return
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	best := ranked[0].Score
	texts := make([]string, 0, len(ranked))
	for _, entry := range ranked {
		if entry.Score != best {
			break
		}
		res, ok := e.quiz.FindResult(entry.Profile)
		if !ok {
			continue
		}
		e.winners = append(e.winners, res)
		texts = append(texts, res.Title+" - "+res.Description)
	}
	e.result = strings.Join(texts, resultSeparator)
}

// Reset starts the quiz over and deletes the persisted record.
func (e *Engine) Reset(ctx context.Context) {
	e.progress = domain.NewProgress()
	e.result = ""
	e.winners = nil
	e.removePersisted(ctx)

	if e.quiz == nil {
		return
	}
	if e.total > 0 {
		e.current = &e.quiz.Questions[0]
		e.status = domain.StatusInProgress
	}
}

// ProgressPercentage is round(index/total*100). It tracks the index of the
// current question rather than completed answers, so it reads 0 on the first
// question and stays below 100 once finished.
func (e *Engine) ProgressPercentage() int {
	return progressPercentage(e.progress.CurrentIndex, e.total)
}

func progressPercentage(index, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(index) / float64(total) * 100))
}

func (e *Engine) persist(ctx context.Context) {
	payload, err := encodeProgress(e.progress)
	if err != nil {
		e.logger.Warn("encode progress failed", "key", e.key, "error", err)
		return
	}
	if err := e.store.Save(ctx, e.key, payload); err != nil {
		e.logger.Warn("save progress failed", "key", e.key, "error", err)
	}
}

func (e *Engine) removePersisted(ctx context.Context) {
	if err := e.store.Remove(ctx, e.key); err != nil {
		e.logger.Warn("remove progress failed", "key", e.key, "error", err)
	}
}

func (e *Engine) Status() domain.Status { return e.status }

// Ready reports whether a quiz has been loaded.
func (e *Engine) Ready() bool { return e.quiz != nil }

func (e *Engine) Key() string { return e.key }

func (e *Engine) Title() string {
	if e.quiz == nil {
		return ""
	}
	return e.quiz.Title
}

func (e *Engine) TotalQuestions() int { return e.total }

// CurrentQuestion returns the question awaiting an answer, if any.
func (e *Engine) CurrentQuestion() (domain.Question, bool) {
	if e.current == nil {
		return domain.Question{}, false
	}
	return *e.current, true
}

// Progress returns a copy of the current progress record.
func (e *Engine) Progress() domain.Progress {
	answers := make(map[string]string, len(e.progress.AnswersByQuestion))
	for k, v := range e.progress.AnswersByQuestion {
		answers[k] = v
	}
	return domain.Progress{
		CurrentIndex:      e.progress.CurrentIndex,
		AnswersByQuestion: answers,
		ScoreByProfile:    e.progress.ScoreByProfile.Clone(),
		Finished:          e.progress.Finished,
	}
}

// ResultText is the rendered result, empty until the quiz is finished.
func (e *Engine) ResultText() string { return e.result }

func (e *Engine) Winners() []domain.ResultProfile {
	return append([]domain.ResultProfile(nil), e.winners...)
}

// View snapshots the session for presentation.
func (e *Engine) View() domain.View {
	p := e.Progress()
	view := domain.View{
		Title:   e.Title(),
		Status:  e.status,
		Index:   p.CurrentIndex,
		Total:   e.total,
		Percent: e.ProgressPercentage(),
		Answers: p.AnswersByQuestion,
		Scores:  p.ScoreByProfile.Entries(),
		Result:  e.result,
		Winners: e.Winners(),
	}
	if q, ok := e.CurrentQuestion(); ok {
		view.Question = &q
	}
	return view
}
