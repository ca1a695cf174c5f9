package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"personality-quiz/internal/domain"
)

// decodeOutcome tells restore what to do with a persisted record.
type decodeOutcome int

const (
	decodeAbsent decodeOutcome = iota
	decodeOK
	decodeCorrupt
)

// persistedProgress mirrors the stored record with raw fields so each one can
// be validated and defaulted on its own.
type persistedProgress struct {
	CurrentIndex      json.RawMessage `json:"indicePergunta"`
	AnswersByQuestion json.RawMessage `json:"respostasPorPergunta"`
	ScoreByProfile    json.RawMessage `json:"pontuacaoPorPerfil"`
	Finished          json.RawMessage `json:"finalizado"`
}

func encodeProgress(p domain.Progress) (string, error) {
	if p.AnswersByQuestion == nil {
		p.AnswersByQuestion = map[string]string{}
	}
	if p.ScoreByProfile == nil {
		p.ScoreByProfile = domain.NewScores()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeProgress parses a stored record. Missing or mistyped scalar fields fall
// back to their zero value; a payload that is not an object, or whose mappings
// have the wrong shape, is reported as corrupt.
func decodeProgress(raw string) (domain.Progress, decodeOutcome, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Progress{}, decodeAbsent, nil
	}

	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.Progress{}, decodeCorrupt, fmt.Errorf("%w: not an object", domain.ErrCorruptProgress)
	}

	var rec persistedProgress
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return domain.Progress{}, decodeCorrupt, fmt.Errorf("%w: %v", domain.ErrCorruptProgress, err)
	}

	progress := domain.NewProgress()
	progress.CurrentIndex = decodeIndex(rec.CurrentIndex)
	progress.Finished = truthy(rec.Finished)

	if !isNullish(rec.AnswersByQuestion) {
		answers := map[string]string{}
		if err := json.Unmarshal(rec.AnswersByQuestion, &answers); err != nil {
			return domain.Progress{}, decodeCorrupt, fmt.Errorf("%w: answers: %v", domain.ErrCorruptProgress, err)
		}
		if answers != nil {
			progress.AnswersByQuestion = answers
		}
	}

	if !isNullish(rec.ScoreByProfile) {
		scores := domain.NewScores()
		if err := scores.UnmarshalJSON(rec.ScoreByProfile); err != nil {
			return domain.Progress{}, decodeCorrupt, fmt.Errorf("%w: scores: %v", domain.ErrCorruptProgress, err)
		}
		progress.ScoreByProfile = scores
	}

	return progress, decodeOK, nil
}

func decodeIndex(raw json.RawMessage) int {
	var f float64
	if isNullish(raw) || json.Unmarshal(raw, &f) != nil {
		return 0
	}
	switch {
	case math.IsNaN(f):
		return 0
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	}
	return int(math.Trunc(f))
}

func isNullish(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) == 0 || bytes.Equal(s, []byte("null"))
}

// truthy coerces any JSON value to a boolean: false, null, 0 and "" are false,
// everything else is true.
func truthy(raw json.RawMessage) bool {
	if isNullish(raw) {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}
