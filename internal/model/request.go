package model

// RawFields holds one condition's submitted values before validation. Values
// may be numbers, numeric strings or booleans; anything else is defaulted.
type RawFields map[string]interface{}

type AssessmentRequest struct {
	Cardiac            RawFields             `json:"cardiac"`
	Renal              RawFields             `json:"renal"`
	Metabolic          RawFields             `json:"metabolic"`
	ModelProbabilities map[Condition]float64 `json:"model_probabilities,omitempty"`
}

func (r *AssessmentRequest) Fields(c Condition) RawFields {
	switch c {
	case ConditionCardiac:
		return r.Cardiac
	case ConditionRenal:
		return r.Renal
	case ConditionMetabolic:
		return r.Metabolic
	}
	return nil
}

// ModelProbability returns the caller-supplied probability for c, if any.
func (r *AssessmentRequest) ModelProbability(c Condition) (float64, bool) {
	p, ok := r.ModelProbabilities[c]
	return p, ok
}
