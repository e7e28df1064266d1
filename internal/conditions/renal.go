package conditions

import "cardialink-engine/internal/model"

// Fields after sc feed the trained model only.
var renalFields = []Field{
	{Name: "age", Label: "Age", Min: 1, Max: 100, Default: 0},
	{Name: "bp", Label: "Blood Pressure (mm Hg)", Min: 50, Max: 180, Default: 0},
	{Name: "al", Label: "Albumin", Min: 0, Max: 5, Default: 0, Options: levels0to5},
	{Name: "su", Label: "Sugar", Min: 0, Max: 5, Default: 0, Options: levels0to5},
	{Name: "bgr", Label: "Blood Glucose Random (mg/dl)", Min: 70, Max: 490, Default: 0},
	{Name: "bu", Label: "Blood Urea (mg/dl)", Min: 15, Max: 400, Default: 0},
	{Name: "sc", Label: "Serum Creatinine (mg/dl)", Min: 0.4, Max: 40, Default: 0, Step: 0.1},
	{Name: "pot", Label: "Potassium (mEq/L)", Min: 2.5, Max: 47, Default: 0, Step: 0.1},
	{Name: "wc", Label: "White Blood Cell Count (cells/cumm)", Min: 2200, Max: 26400, Default: 0},
	{Name: "htn", Label: "Hypertension", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "dm", Label: "Diabetes Mellitus", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "cad", Label: "Coronary Artery Disease", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "pe", Label: "Pedal Edema", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "ane", Label: "Anemia", Min: 0, Max: 1, Default: 0, Options: yesNo},
}

var levels0to5 = []Option{{0, "0"}, {1, "1"}, {2, "2"}, {3, "3"}, {4, "4"}, {5, "5"}}

type RenalAssessment struct{}

func (a *RenalAssessment) Condition() model.Condition { return model.ConditionRenal }

func (a *RenalAssessment) Fields() []Field { return renalFields }

func (a *RenalAssessment) Points(f Features) float64 {
	var points float64
	if f["age"] > 60 {
		points += 0.2
	}
	if f["bp"] > 140 {
		points += 0.15
	}
	if f["al"] > 1 {
		points += 0.15
	}
	if f["su"] > 1 {
		points += 0.1
	}
	if f["bgr"] > 200 {
		points += 0.1
	}
	if f["bu"] > 100 {
		points += 0.15
	}
	if f["sc"] > 1.5 {
		points += 0.15
	}
	return points
}
