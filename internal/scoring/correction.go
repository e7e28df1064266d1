package scoring

import "cardialink-engine/internal/model"

// Correction damps classifier outputs above Threshold by blending them with
// the heuristic: ModelWeight*model + (1-ModelWeight)*heuristic. It applies
// only to the listed conditions; the cardiac model is known to saturate
// near 1.0 regardless of input.
type Correction struct {
	Enabled     bool
	Threshold   float64
	ModelWeight float64
	Conditions  []model.Condition
}

func DefaultCorrection() Correction {
	return Correction{
		Enabled:     true,
		Threshold:   0.8,
		ModelWeight: 0.3,
		Conditions:  []model.Condition{model.ConditionCardiac},
	}
}

func (c Correction) appliesTo(cond model.Condition, p float64) bool {
	if !c.Enabled || p <= c.Threshold {
		return false
	}
	for _, allowed := range c.Conditions {
		if allowed == cond {
			return true
		}
	}
	return false
}

func (c Correction) blend(p, heuristic float64) float64 {
	return c.ModelWeight*p + (1-c.ModelWeight)*heuristic
}
