package scoring

import (
	"context"
	"math"

	"cardialink-engine/internal/conditions"
	"cardialink-engine/internal/model"
)

// Scorer produces one condition's risk probability. Implementations never
// fail: every path ends in a probability within [0,1].
type Scorer interface {
	Condition() model.Condition
	Score(ctx context.Context, in Input) Result
}

type Input struct {
	Features conditions.Features
	// ModelProbability is a classifier output supplied by the caller; nil
	// when the caller has none.
	ModelProbability *float64
}

type Result struct {
	Condition   model.Condition
	Probability float64
	Source      model.ScoreSource
	Messages    []model.AssessmentMessage
}

// Clamp bounds p to [0,1]. NaN maps to 0.
func Clamp(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Label buckets a probability for display.
func Label(p float64) string {
	switch {
	case p > 0.7:
		return "High Risk"
	case p > 0.3:
		return "Medium Risk"
	default:
		return "Low Risk"
	}
}
