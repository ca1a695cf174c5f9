package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"personality-quiz/internal/app"
	"personality-quiz/internal/domain"
	"personality-quiz/internal/infra/memory"
)

const key = domain.StorageKey

func TestCompletingQuizFinishesOnLastIndex(t *testing.T) {
	ctx := context.Background()
	engine := app.NewEngine(memory.NewProgressStore(), key)
	engine.Initialize(ctx, twoQuestionQuiz())

	require.True(t, engine.SubmitAnswer(ctx, "q1", "a"))
	require.True(t, engine.SubmitAnswer(ctx, "q2", "c"))

	p := engine.Progress()
	require.True(t, p.Finished)
	require.Equal(t, 1, p.CurrentIndex)
	require.Equal(t, domain.StatusFinished, engine.Status())
	_, ok := engine.CurrentQuestion()
	require.False(t, ok)
}

func TestScenarioTwoQuestions(t *testing.T) {
	ctx := context.Background()
	engine := app.NewEngine(memory.NewProgressStore(), key)
	engine.Initialize(ctx, twoQuestionQuiz())

	engine.SubmitAnswer(ctx, "q1", "a")
	engine.SubmitAnswer(ctx, "q2", "c")

	p := engine.Progress()
	require.Equal(t, map[string]int{"x": 3}, p.ScoreByProfile.Map())
	require.Equal(t, map[string]string{"q1": "a", "q2": "c"}, p.AnswersByQuestion)
	require.True(t, p.Finished)
	require.Equal(t, "Explorer - Loves new places", engine.ResultText())
	require.Equal(t, []domain.ResultProfile{{Profile: "x", Title: "Explorer", Description: "Loves new places"}}, engine.Winners())
}

func TestEmptyQuizIsNeverFinished(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	_ = store.Save(ctx, key, `{"indicePergunta":4,"finalizado":true}`)

	engine := app.NewEngine(store, key)
	engine.Initialize(ctx, domain.Quiz{Title: "nothing"})

	require.Equal(t, domain.StatusEmpty, engine.Status())
	require.False(t, engine.Progress().Finished)
	require.Equal(t, 0, engine.ProgressPercentage())
	require.False(t, engine.SubmitAnswer(ctx, "q1", "a"))
	require.Equal(t, 0, engine.ProgressPercentage())

	engine.Reset(ctx)
	require.Equal(t, domain.StatusEmpty, engine.Status())
	require.Equal(t, 0, engine.ProgressPercentage())
}

func TestProgressRoundTripsThroughStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	quiz := threeQuestionQuiz()

	first := app.NewEngine(store, key)
	first.Initialize(ctx, quiz)
	first.SubmitAnswer(ctx, "q1", "y1")
	first.SubmitAnswer(ctx, "q2", "x2")

	second := app.NewEngine(store, key)
	second.Initialize(ctx, quiz)

	want := first.Progress()
	got := second.Progress()
	require.Equal(t, want.CurrentIndex, got.CurrentIndex)
	require.Equal(t, want.AnswersByQuestion, got.AnswersByQuestion)
	require.Equal(t, want.ScoreByProfile.Entries(), got.ScoreByProfile.Entries())
	require.Equal(t, want.Finished, got.Finished)

	q, ok := second.CurrentQuestion()
	require.True(t, ok)
	require.Equal(t, "q3", q.ID)
}

func TestRestoreFinishedSessionRebuildsResult(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	quiz := twoQuestionQuiz()

	first := app.NewEngine(store, key)
	first.Initialize(ctx, quiz)
	first.SubmitAnswer(ctx, "q1", "b")
	first.SubmitAnswer(ctx, "q2", "c")

	second := app.NewEngine(store, key)
	second.Initialize(ctx, quiz)

	require.Equal(t, domain.StatusFinished, second.Status())
	require.Equal(t, first.ResultText(), second.ResultText())
	require.False(t, second.SubmitAnswer(ctx, "q1", "a"))
}

func TestCorruptPayloadIsDiscarded(t *testing.T) {
	payloads := map[string]string{
		"not json":        `{{not json`,
		"null":            `null`,
		"array":           `[1,2]`,
		"string answers":  `{"indicePergunta":1,"respostasPorPergunta":"q1"}`,
		"numeric answer":  `{"respostasPorPergunta":{"q1":5}}`,
		"text scores":     `{"pontuacaoPorPerfil":{"x":"many"}}`,
		"truncated":       `{"indicePergunta":1,`,
		"scores as array": `{"pontuacaoPorPerfil":[1]}`,
		"score overflow":  `{"pontuacaoPorPerfil":{"x":1e300,"y":5}}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewProgressStore()
			require.NoError(t, store.Save(ctx, key, payload))

			engine := app.NewEngine(store, key)
			engine.Initialize(ctx, threeQuestionQuiz())

			p := engine.Progress()
			require.Equal(t, 0, p.CurrentIndex)
			require.Empty(t, p.AnswersByQuestion)
			require.Equal(t, 0, p.ScoreByProfile.Len())
			require.False(t, p.Finished)

			_, ok, _ := store.Load(ctx, key)
			require.False(t, ok, "corrupt record should be removed")
		})
	}
}

func TestRestoreDefaultsMistypedFields(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	require.NoError(t, store.Save(ctx, key, `{"indicePergunta":"two","finalizado":"yes"}`))

	engine := app.NewEngine(store, key)
	engine.Initialize(ctx, threeQuestionQuiz())

	p := engine.Progress()
	require.Equal(t, 0, p.CurrentIndex)
	require.True(t, p.Finished)
	require.Empty(t, p.AnswersByQuestion)
	require.Equal(t, "", engine.ResultText())

	_, ok, _ := store.Load(ctx, key)
	require.True(t, ok, "recoverable record should be kept")
}

func TestFinishedFlagTruthiness(t *testing.T) {
	cases := map[string]bool{
		`true`:  true,
		`1`:     true,
		`"x"`:   true,
		`{}`:    true,
		`false`: false,
		`0`:     false,
		`""`:    false,
		`null`:  false,
	}
	for raw, want := range cases {
		ctx := context.Background()
		store := memory.NewProgressStore()
		require.NoError(t, store.Save(ctx, key, `{"finalizado":`+raw+`}`))

		engine := app.NewEngine(store, key)
		engine.Initialize(ctx, threeQuestionQuiz())
		require.Equal(t, want, engine.Progress().Finished, "finalizado=%s", raw)
	}
}

func TestTiesReportEveryWinnerInFirstScoredOrder(t *testing.T) {
	ctx := context.Background()
	engine := app.NewEngine(memory.NewProgressStore(), key)
	engine.Initialize(ctx, threeQuestionQuiz())

	engine.SubmitAnswer(ctx, "q1", "y1")
	engine.SubmitAnswer(ctx, "q2", "x2")
	engine.SubmitAnswer(ctx, "q3", "z3")

	require.Equal(t, "Builder - Makes things | Explorer - Loves new places", engine.ResultText())
	require.Len(t, engine.Winners(), 2)
}

func TestTieOrderSurvivesReload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	quiz := threeQuestionQuiz()

	first := app.NewEngine(store, key)
	first.Initialize(ctx, quiz)
	first.SubmitAnswer(ctx, "q1", "y1")
	first.SubmitAnswer(ctx, "q2", "x2")

	second := app.NewEngine(store, key)
	second.Initialize(ctx, quiz)
	second.SubmitAnswer(ctx, "q3", "z3")

	require.Equal(t, "Builder - Makes things | Explorer - Loves new places", second.ResultText())
}

func TestWinnersWithoutResultEntryAreDropped(t *testing.T) {
	ctx := context.Background()
	quiz := twoQuestionQuiz()
	quiz.Questions[1].Options = append(quiz.Questions[1].Options, domain.Option{
		ID: "d", ProfileScores: domain.Weights{{Profile: "ghost", Score: 5}},
	})

	engine := app.NewEngine(memory.NewProgressStore(), key)
	engine.Initialize(ctx, quiz)
	engine.SubmitAnswer(ctx, "q1", "a")
	engine.SubmitAnswer(ctx, "q2", "d")

	require.True(t, engine.Progress().Finished)
	require.Equal(t, "", engine.ResultText())
	require.Empty(t, engine.Winners())
}

func TestNoScoresGivesEmptyResult(t *testing.T) {
	ctx := context.Background()
	engine := app.NewEngine(memory.NewProgressStore(), key)
	engine.Initialize(ctx, twoQuestionQuiz())

	engine.SubmitAnswer(ctx, "q1", "nope")
	engine.SubmitAnswer(ctx, "q2", "nope")

	require.True(t, engine.Progress().Finished)
	require.Equal(t, "", engine.ResultText())
}

func TestResetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	engine := app.NewEngine(store, key)
	engine.Initialize(ctx, twoQuestionQuiz())
	engine.SubmitAnswer(ctx, "q1", "a")
	engine.SubmitAnswer(ctx, "q2", "c")

	engine.Reset(ctx)
	once := engine.View()
	engine.Reset(ctx)
	twice := engine.View()

	require.Equal(t, once, twice)
	require.Equal(t, domain.StatusInProgress, twice.Status)
	require.Equal(t, 0, twice.Index)
	require.Equal(t, "", twice.Result)
	require.NotNil(t, twice.Question)
	require.Equal(t, "q1", twice.Question.ID)
	require.Equal(t, 0, store.Len())
	require.True(t, engine.SubmitAnswer(ctx, "q1", "b"))
}

func TestUnknownOptionRecordsAnswerWithoutScore(t *testing.T) {
	ctx := context.Background()
	engine := app.NewEngine(memory.NewProgressStore(), key)
	engine.Initialize(ctx, twoQuestionQuiz())

	require.True(t, engine.SubmitAnswer(ctx, "q1", "c"))

	p := engine.Progress()
	require.Equal(t, "c", p.AnswersByQuestion["q1"])
	require.Equal(t, 0, p.ScoreByProfile.Len())
	require.Equal(t, 1, p.CurrentIndex)
}

func TestRestoredIndexIsClamped(t *testing.T) {
	cases := map[string]int{
		`{"indicePergunta":7}`:      2,
		`{"indicePergunta":3}`:      2,
		`{"indicePergunta":-4}`:     0,
		`{"indicePergunta":1.9}`:    1,
		`{"indicePergunta":1e300}`:  2,
		`{"indicePergunta":9.3e18}`: 2,
		`{"indicePergunta":-1e300}`: 0,
	}
	for payload, want := range cases {
		ctx := context.Background()
		store := memory.NewProgressStore()
		require.NoError(t, store.Save(ctx, key, payload))

		engine := app.NewEngine(store, key)
		engine.Initialize(ctx, threeQuestionQuiz())
		require.Equal(t, want, engine.Progress().CurrentIndex, payload)

		q, ok := engine.CurrentQuestion()
		require.True(t, ok)
		require.Equal(t, threeQuestionQuiz().Questions[want].ID, q.ID)
	}
}

func TestProgressPercentageTracksIndex(t *testing.T) {
	ctx := context.Background()
	engine := app.NewEngine(memory.NewProgressStore(), key)
	engine.Initialize(ctx, threeQuestionQuiz())

	require.Equal(t, 0, engine.ProgressPercentage())
	engine.SubmitAnswer(ctx, "q1", "x1")
	require.Equal(t, 33, engine.ProgressPercentage())
	engine.SubmitAnswer(ctx, "q2", "x2")
	require.Equal(t, 67, engine.ProgressPercentage())
	engine.SubmitAnswer(ctx, "q3", "z3")
	require.Equal(t, 67, engine.ProgressPercentage())
}

func TestLoadFailureLeavesEngineUnavailable(t *testing.T) {
	ctx := context.Background()
	engine := app.NewEngine(memory.NewProgressStore(), key)

	err := engine.Load(ctx, memory.NewQuizRepository(memory.NewStaticQuizLoader(nil), time.Minute), "missing")
	require.ErrorIs(t, err, domain.ErrQuizUnavailable)
	require.Equal(t, domain.StatusUnavailable, engine.Status())
	require.False(t, engine.Ready())
	require.False(t, engine.SubmitAnswer(ctx, "q1", "a"))
}

func TestLoadInitializesFromRepository(t *testing.T) {
	ctx := context.Background()
	engine := app.NewEngine(memory.NewProgressStore(), key)
	repo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{"quiz": twoQuestionQuiz()}), time.Minute)

	require.NoError(t, engine.Load(ctx, repo, "quiz"))
	require.True(t, engine.Ready())
	require.Equal(t, "Travel personality", engine.Title())
	require.Equal(t, domain.StatusInProgress, engine.Status())
}

func TestStoreFailuresDoNotBreakSession(t *testing.T) {
	ctx := context.Background()
	engine := app.NewEngine(failingStore{}, key)
	engine.Initialize(ctx, twoQuestionQuiz())

	require.Equal(t, domain.StatusInProgress, engine.Status())
	require.True(t, engine.SubmitAnswer(ctx, "q1", "a"))
	require.True(t, engine.SubmitAnswer(ctx, "q2", "c"))
	require.Equal(t, "Explorer - Loves new places", engine.ResultText())
	engine.Reset(ctx)
	require.Equal(t, domain.StatusInProgress, engine.Status())
}

func TestPersistedRecordUsesWireFieldNames(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	engine := app.NewEngine(store, key)
	engine.Initialize(ctx, twoQuestionQuiz())
	engine.SubmitAnswer(ctx, "q1", "a")

	raw, ok, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{
		"indicePergunta": 1,
		"respostasPorPergunta": {"q1": "a"},
		"pontuacaoPorPerfil": {"x": 2},
		"finalizado": false
	}`, raw)
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (string, bool, error) {
	return "", false, errors.New("quota exceeded")
}

func (failingStore) Save(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func (failingStore) Remove(context.Context, string) error {
	return errors.New("quota exceeded")
}

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		Title: "Travel personality",
		Questions: []domain.Question{
			{
				ID:   "q1",
				Text: "Pick a weekend",
				Options: []domain.Option{
					{ID: "a", Text: "Hiking", ProfileScores: domain.Weights{{Profile: "x", Score: 2}}},
					{ID: "b", Text: "Workshop", ProfileScores: domain.Weights{{Profile: "y", Score: 2}}},
				},
			},
			{
				ID:   "q2",
				Text: "Pick a souvenir",
				Options: []domain.Option{
					{ID: "c", Text: "Map", ProfileScores: domain.Weights{{Profile: "x", Score: 1}}},
				},
			},
		},
		Results: []domain.ResultProfile{
			{Profile: "x", Title: "Explorer", Description: "Loves new places"},
			{Profile: "y", Title: "Builder", Description: "Makes things"},
		},
	}
}

// threeQuestionQuiz lets y and x tie at 2 with y scored first.
func threeQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		Title: "Travel personality",
		Questions: []domain.Question{
			{ID: "q1", Options: []domain.Option{
				{ID: "x1", ProfileScores: domain.Weights{{Profile: "x", Score: 1}}},
				{ID: "y1", ProfileScores: domain.Weights{{Profile: "y", Score: 2}}},
			}},
			{ID: "q2", Options: []domain.Option{
				{ID: "x2", ProfileScores: domain.Weights{{Profile: "x", Score: 2}}},
			}},
			{ID: "q3", Options: []domain.Option{
				{ID: "z3", ProfileScores: domain.Weights{{Profile: "z", Score: 1}}},
			}},
		},
		Results: []domain.ResultProfile{
			{Profile: "x", Title: "Explorer", Description: "Loves new places"},
			{Profile: "y", Title: "Builder", Description: "Makes things"},
			{Profile: "z", Title: "Dreamer", Description: "Stays home"},
		},
	}
}
