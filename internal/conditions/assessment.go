package conditions

import "cardialink-engine/internal/model"

// Assessment defines the contract for one condition's questionnaire step.
// Each implementation declares its input fields and the additive rule-based
// points for a validated feature set.
type Assessment interface {
	Condition() model.Condition
	Fields() []Field
	// Points returns the heuristic point total. The total is not clamped;
	// callers clamp to [0,1] after any jitter.
	Points(f Features) float64
}
