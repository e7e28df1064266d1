package composite

import (
	"math"

	"github.com/pkg/errors"

	"cardialink-engine/internal/model"
	"cardialink-engine/internal/scoring"
)

// Weights are the relative contributions of each condition. They need not
// sum to 1; the composite divides by their total.
type Weights struct {
	Cardiac   float64
	Renal     float64
	Metabolic float64
}

func DefaultWeights() Weights {
	return Weights{Cardiac: 0.5, Renal: 0.3, Metabolic: 0.2}
}

func (w Weights) For(c model.Condition) float64 {
	switch c {
	case model.ConditionCardiac:
		return w.Cardiac
	case model.ConditionRenal:
		return w.Renal
	case model.ConditionMetabolic:
		return w.Metabolic
	}
	return 0
}

func (w Weights) Sum() float64 {
	return w.Cardiac + w.Renal + w.Metabolic
}

func (w Weights) Validate() error {
	for _, v := range []float64{w.Cardiac, w.Renal, w.Metabolic} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("weights must be finite, got %+v", w)
		}
		if v < 0 {
			return errors.Errorf("weights must be non-negative, got %+v", w)
		}
	}
	sum := w.Sum()
	if math.IsInf(sum, 0) {
		return errors.Errorf("weights overflow, got %+v", w)
	}
	if sum <= 0 {
		return errors.New("weights must not all be zero")
	}
	return nil
}

// Override raises the composite to Floor whenever any single condition
// exceeds Threshold.
type Override struct {
	Threshold float64
	Floor     float64
}

func DefaultOverride() Override {
	return Override{Threshold: 0.9, Floor: 0.9}
}

type Result struct {
	// Weighted is the plain weighted mean before any override.
	Weighted        float64
	Score           float64
	OverrideApplied bool
	// Trigger is the first condition, in questionnaire order, above the
	// override threshold.
	Trigger model.Condition
}

type Calculator struct {
	weights  Weights
	override Override
}

func NewCalculator(w Weights, o Override) (*Calculator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{weights: w, override: o}, nil
}

func (c *Calculator) Weights() Weights { return c.weights }

// Combine computes the composite risk. Inputs are clamped to [0,1]; the
// result is deterministic for a given set of probabilities.
func (c *Calculator) Combine(p map[model.Condition]float64) Result {
	var sum float64
	for _, cond := range model.Conditions {
		sum += scoring.Clamp(p[cond]) * c.weights.For(cond)
	}

	weighted := scoring.Clamp(sum / c.weights.Sum())
	res := Result{Weighted: weighted, Score: weighted}

	for _, cond := range model.Conditions {
		if scoring.Clamp(p[cond]) > c.override.Threshold {
			res.Trigger = cond
			break
		}
	}
	if res.Trigger != "" && res.Score < c.override.Floor {
		res.Score = scoring.Clamp(c.override.Floor)
		res.OverrideApplied = true
	}
	return res
}
