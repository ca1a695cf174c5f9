package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ProfileScore is one entry of a Scores table.
type ProfileScore struct {
	Profile string `json:"profile"`
	Score   int    `json:"score"`
}

// Scores maps profile names to accumulated points and remembers the order in
// which profiles were first touched. The JSON form is an object whose key order
// follows that insertion order.
type Scores struct {
	order  []string
	values map[string]int
}

func NewScores() *Scores {
	return &Scores{values: make(map[string]int)}
}

// Add accumulates points for profile. A profile is registered on its first
// contribution even when points is zero.
func (s *Scores) Add(profile string, points int) {
	if s.values == nil {
		s.values = make(map[string]int)
	}
	if _, ok := s.values[profile]; !ok {
		s.order = append(s.order, profile)
	}
	s.values[profile] += points
}

func (s *Scores) Get(profile string) (int, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.values[profile]
	return v, ok
}

func (s *Scores) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Entries returns the scores in insertion order.
func (s *Scores) Entries() []ProfileScore {
	if s == nil {
		return nil
	}
	out := make([]ProfileScore, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, ProfileScore{Profile: p, Score: s.values[p]})
	}
	return out
}

// Map returns a copy of the scores as a plain map.
func (s *Scores) Map() map[string]int {
	out := make(map[string]int, s.Len())
	for _, e := range s.Entries() {
		out[e.Profile] = e.Score
	}
	return out
}

func (s *Scores) Clone() *Scores {
	c := NewScores()
	for _, e := range s.Entries() {
		c.Add(e.Profile, e.Score)
	}
	return c
}

func (s *Scores) MarshalJSON() ([]byte, error) {
	return encodeOrderedInts(s.Entries())
}

// UnmarshalJSON accepts an object of numbers and keeps the document's key order.
func (s *Scores) UnmarshalJSON(data []byte) error {
	entries, err := decodeOrderedInts(data)
	if err != nil {
		return fmt.Errorf("scores: %w", err)
	}
	out := NewScores()
	for _, e := range entries {
		out.Add(e.Profile, e.Score)
	}
	*s = *out
	return nil
}

// Weights are the per-profile points an option contributes, in document order.
type Weights []ProfileScore

func (w Weights) MarshalJSON() ([]byte, error) {
	return encodeOrderedInts(w)
}

func (w *Weights) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*w = nil
		return nil
	}
	entries, err := decodeOrderedInts(data)
	if err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	*w = entries
	return nil
}

func encodeOrderedInts(entries []ProfileScore) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Profile)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Score))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeOrderedInts reads a JSON object of numbers. Duplicate keys keep the
// position of their first occurrence and the value of their last; non-integral
// numbers are truncated.
func decodeOrderedInts(data []byte) ([]ProfileScore, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var out []ProfileScore
	pos := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return nil, fmt.Errorf("profile %q has non-numeric value %v", key, valTok)
		}
		f, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", key, err)
		}
		if f >= float64(math.MaxInt) || f <= float64(math.MinInt) {
			return nil, fmt.Errorf("profile %q: score %s out of range", key, num)
		}
		v := int(math.Trunc(f))
		if i, dup := pos[key]; dup {
			out[i].Score = v
			continue
		}
		pos[key] = len(out)
		out = append(out, ProfileScore{Profile: key, Score: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
