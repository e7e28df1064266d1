package model

type AssessmentMessage struct {
	ID        int       `json:"id"`
	Level     string    `json:"level"`
	Code      string    `json:"code"`
	Condition Condition `json:"condition,omitempty"`
	Message   string    `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

const (
	CodeFieldDefaulted       = "FIELD_DEFAULTED"
	CodeFieldClamped         = "FIELD_CLAMPED"
	CodeModelUnavailable     = "MODEL_UNAVAILABLE"
	CodeModelOutputCorrected = "MODEL_OUTPUT_CORRECTED"
	CodeHighRiskOverride     = "HIGH_RISK_OVERRIDE"
	CodeAssessmentIncomplete = "ASSESSMENT_INCOMPLETE"
	CodeUnknownCondition     = "UNKNOWN_CONDITION"
)
