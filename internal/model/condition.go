package model

import "strings"

type Condition string

const (
	ConditionCardiac   Condition = "cardiac"
	ConditionRenal     Condition = "renal"
	ConditionMetabolic Condition = "metabolic"
)

// Conditions lists the assessment steps in questionnaire order.
var Conditions = []Condition{ConditionCardiac, ConditionRenal, ConditionMetabolic}

// ParseCondition accepts both condition names and questionnaire page slugs.
func ParseCondition(s string) (Condition, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cardiac", "heart":
		return ConditionCardiac, true
	case "renal", "kidney":
		return ConditionRenal, true
	case "metabolic", "diabetes":
		return ConditionMetabolic, true
	}
	return "", false
}

// Slug is the questionnaire page path segment for the condition.
func (c Condition) Slug() string {
	switch c {
	case ConditionCardiac:
		return "heart"
	case ConditionRenal:
		return "kidney"
	case ConditionMetabolic:
		return "diabetes"
	}
	return string(c)
}

func (c Condition) Title() string {
	switch c {
	case ConditionCardiac:
		return "Heart Disease"
	case ConditionRenal:
		return "Kidney Disease"
	case ConditionMetabolic:
		return "Diabetes"
	}
	return string(c)
}

type ScoreSource string

const (
	SourceModel     ScoreSource = "model"
	SourceHeuristic ScoreSource = "heuristic"
	SourceCorrected ScoreSource = "model_corrected"
)
