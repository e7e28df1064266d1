package conditions

import "cardialink-engine/internal/model"

var registry = map[model.Condition]Assessment{
	model.ConditionCardiac:   &CardiacAssessment{},
	model.ConditionRenal:     &RenalAssessment{},
	model.ConditionMetabolic: &MetabolicAssessment{},
}

func Get(c model.Condition) (Assessment, bool) {
	a, ok := registry[c]
	return a, ok
}
