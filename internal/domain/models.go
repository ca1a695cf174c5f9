package domain

// StorageKey is the fixed key the progress record is persisted under.
const StorageKey = "buzzfeed_quiz_progresso"

// Option is a selectable answer; each option contributes points to one or more profiles.
type Option struct {
	ID            string  `json:"id"`
	Text          string  `json:"texto"`
	ProfileScores Weights `json:"perfisPontuacao"`
}

// Question is one quiz step.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"texto"`
	Options []Option `json:"alternativas"`
}

// FindOption returns the option with the given id, if any.
func (q Question) FindOption(optionID string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// ResultProfile is the display text for a profile that can win the quiz.
type ResultProfile struct {
	Profile     string `json:"perfil"`
	Title       string `json:"titulo"`
	Description string `json:"descricao"`
}

// Quiz is the immutable quiz definition.
type Quiz struct {
	Title     string          `json:"titulo"`
	Questions []Question      `json:"perguntas"`
	Results   []ResultProfile `json:"resultados"`
}

// FindResult returns the first result entry registered for profile.
func (q Quiz) FindResult(profile string) (ResultProfile, bool) {
	for _, r := range q.Results {
		if r.Profile == profile {
			return r, true
		}
	}
	return ResultProfile{}, false
}

// Progress is the mutable state of one traversal through a quiz.
type Progress struct {
	CurrentIndex      int               `json:"indicePergunta"`
	AnswersByQuestion map[string]string `json:"respostasPorPergunta"`
	ScoreByProfile    *Scores           `json:"pontuacaoPorPerfil"`
	Finished          bool              `json:"finalizado"`
}

// NewProgress returns a fresh, empty progress record.
func NewProgress() Progress {
	return Progress{
		AnswersByQuestion: make(map[string]string),
		ScoreByProfile:    NewScores(),
	}
}

// Status is the lifecycle state of a quiz session.
type Status string

const (
	StatusLoading     Status = "loading"
	StatusUnavailable Status = "unavailable"
	StatusEmpty       Status = "empty"
	StatusInProgress  Status = "in_progress"
	StatusFinished    Status = "finished"
)

// View is a read-only snapshot of a session for presentation layers.
type View struct {
	SessionID string            `json:"sessionId,omitempty"`
	Title     string            `json:"title"`
	Status    Status            `json:"status"`
	Question  *Question         `json:"question,omitempty"`
	Index     int               `json:"index"`
	Total     int               `json:"total"`
	Percent   int               `json:"percent"`
	Answers   map[string]string `json:"answers"`
	Scores    []ProfileScore    `json:"scores"`
	Result    string            `json:"result"`
	Winners   []ResultProfile   `json:"winners,omitempty"`
}
