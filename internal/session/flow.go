package session

import (
	"time"

	"cardialink-engine/internal/jsonpatch"
	"cardialink-engine/internal/model"
)

// CanView reports whether the questionnaire page for step may be shown.
// Each step needs the one before it; the cardiac step is always open.
func CanView(s *model.Session, step model.Condition) bool {
	switch step {
	case model.ConditionCardiac:
		return true
	case model.ConditionRenal:
		return s != nil && s.Has(model.ConditionCardiac)
	case model.ConditionMetabolic:
		return s != nil && s.Has(model.ConditionRenal)
	}
	return false
}

// CanViewResults requires all three scores.
func CanViewResults(s *model.Session) bool {
	return s != nil && s.Complete()
}

// Next is the step after c, or "" after the last one.
func Next(c model.Condition) model.Condition {
	for i, cond := range model.Conditions {
		if cond == c && i+1 < len(model.Conditions) {
			return model.Conditions[i+1]
		}
	}
	return ""
}

type snapshot struct {
	Scores    map[model.Condition]float64           `json:"scores"`
	Sources   map[model.Condition]model.ScoreSource `json:"sources"`
	Composite *float64                              `json:"composite"`
}

func snap(s *model.Session) snapshot {
	out := snapshot{
		Scores:  make(map[model.Condition]float64, len(s.Scores)),
		Sources: make(map[model.Condition]model.ScoreSource, len(s.Sources)),
	}
	for k, v := range s.Scores {
		out.Scores[k] = v
	}
	for k, v := range s.Sources {
		out.Sources[k] = v
	}
	if s.Composite != nil {
		c := *s.Composite
		out.Composite = &c
	}
	return out
}

// Record stores a step score, overwriting any earlier one. A non-nil
// composite is stored with it; otherwise any stored composite is cleared,
// since it no longer reflects the scores. The revision is bumped and the
// patch from the previous state is kept on the session and returned.
func Record(s *model.Session, c model.Condition, p float64, src model.ScoreSource, composite *float64, now time.Time) ([]model.PatchOperation, error) {
	if s.Scores == nil {
		s.Scores = make(map[model.Condition]float64, len(model.Conditions))
	}
	if s.Sources == nil {
		s.Sources = make(map[model.Condition]model.ScoreSource, len(model.Conditions))
	}

	before := snap(s)

	s.Scores[c] = p
	s.Sources[c] = src
	s.Composite = composite

	patch, err := jsonpatch.Between(before, snap(s))
	if err != nil {
		return nil, err
	}

	s.Revision++
	s.LastPatch = patch
	s.UpdatedAt = now.UTC()
	return patch, nil
}
