package model

type AssessmentResponse struct {
	AssessmentMetadata AssessmentMetadata `json:"assessment_metadata"`
	AssessmentResult   AssessmentResult   `json:"assessment_result"`
}

type AssessmentMetadata struct {
	AssessmentID          string `json:"assessment_id"`
	AssessmentStartedAt   string `json:"assessment_started_at"`
	AssessmentCompletedAt string `json:"assessment_completed_at"`
	AssessmentDurationMs  int64  `json:"assessment_duration_ms"`
	AssessmentOutcome     string `json:"assessment_outcome"`
}

type AssessmentResult struct {
	Messages   []AssessmentMessage `json:"messages"`
	Conditions []ConditionResult   `json:"conditions"`
	Composite  *CompositeResult    `json:"composite"`
	Premium    *PremiumQuote       `json:"premium"`
}

type ConditionResult struct {
	Condition      Condition   `json:"condition"`
	Probability    float64     `json:"probability"`
	Percent        float64     `json:"percent"`
	Label          string      `json:"label"`
	Source         ScoreSource `json:"source"`
	MessageIndexes []int       `json:"message_indexes,omitempty"`
}

type CompositeResult struct {
	Weighted        float64 `json:"weighted"`
	Score           float64 `json:"score"`
	Percent         float64 `json:"percent"`
	Label           string  `json:"label"`
	OverrideApplied bool    `json:"override_applied"`
}

type PremiumQuote struct {
	Table      string `json:"table"`
	Tier       string `json:"tier"`
	MinPremium int    `json:"min_premium"`
	MaxPremium int    `json:"max_premium"`
	Currency   string `json:"currency"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)

// ScoreRequest scores a single condition.
type ScoreRequest struct {
	Fields           RawFields `json:"fields"`
	ModelProbability *float64  `json:"model_probability,omitempty"`
}

type ScoreResponse struct {
	Result   ConditionResult     `json:"result"`
	Messages []AssessmentMessage `json:"messages"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Model     bool   `json:"model"`
}
