package model

import (
	"time"

	json "github.com/goccy/go-json"
)

// Session is one respondent's progress through the questionnaire.
type Session struct {
	ID        string                    `json:"id"`
	Scores    map[Condition]float64     `json:"scores"`
	Sources   map[Condition]ScoreSource `json:"sources"`
	Composite *float64                  `json:"composite"`
	Revision  int                       `json:"revision"`
	LastPatch []PatchOperation          `json:"last_patch"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		Scores:  make(map[Condition]float64, len(Conditions)),
		Sources: make(map[Condition]ScoreSource, len(Conditions)),
	}
}

func (s *Session) Has(c Condition) bool {
	_, ok := s.Scores[c]
	return ok
}

// Complete reports whether every condition has a score.
func (s *Session) Complete() bool {
	for _, c := range Conditions {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// PatchOperation is one RFC 6902 operation. Value is always written for add
// and replace, as null when nil, and never for remove.
type PatchOperation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

type removeOperation struct {
	Op   string `json:"op"`
	Path string `json:"path"`
}

func (p PatchOperation) MarshalJSON() ([]byte, error) {
	if p.Op == "remove" {
		return json.Marshal(removeOperation{Op: p.Op, Path: p.Path})
	}
	type plain PatchOperation
	return json.Marshal(plain(p))
}
