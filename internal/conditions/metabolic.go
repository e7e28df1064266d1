package conditions

import "cardialink-engine/internal/model"

var metabolicFields = []Field{
	{Name: "highbp", Label: "High Blood Pressure", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "highchol", Label: "High Cholesterol", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "cholcheck", Label: "Cholesterol Check in 5 Years", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "bmi", Label: "Body Mass Index", Min: 10, Max: 60, Default: 0, Step: 0.1},
	{Name: "smoker", Label: "Smoker", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "stroke", Label: "Ever Had a Stroke", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "heartdisease", Label: "Coronary Heart Disease or Heart Attack", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "physactivity", Label: "Physical Activity in Past 30 Days", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "fruits", Label: "Eats Fruit Daily", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "veggies", Label: "Eats Vegetables Daily", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "alcohol", Label: "Heavy Alcohol Consumption", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "healthcare", Label: "Has Health Care Coverage", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "nodoc", Label: "Skipped Doctor Due to Cost", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "genhlth", Label: "General Health", Min: 1, Max: 5, Default: 0, Options: []Option{
		{1, "Excellent"}, {2, "Very Good"}, {3, "Good"}, {4, "Fair"}, {5, "Poor"},
	}},
	{Name: "menthlth", Label: "Days of Poor Mental Health (past 30)", Min: 0, Max: 30, Default: 0},
	{Name: "physhlth", Label: "Days of Poor Physical Health (past 30)", Min: 0, Max: 30, Default: 0},
	{Name: "diffwalk", Label: "Difficulty Walking", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "sex", Label: "Sex", Min: 0, Max: 1, Default: 0, Options: []Option{{1, "Male"}, {0, "Female"}}},
	{Name: "age", Label: "Age Category (1-13)", Min: 1, Max: 13, Default: 0},
}

type MetabolicAssessment struct{}

func (a *MetabolicAssessment) Condition() model.Condition { return model.ConditionMetabolic }

func (a *MetabolicAssessment) Fields() []Field { return metabolicFields }

// Points adds for risk indicators and for missing protective habits
// (no physical activity, no fruit, no vegetables).
func (a *MetabolicAssessment) Points(f Features) float64 {
	var points float64
	if f.Flag("highbp") {
		points += 0.15
	}
	if f.Flag("highchol") {
		points += 0.15
	}
	if f["bmi"] >= 30 {
		points += 0.15
	}
	if f.Flag("smoker") {
		points += 0.10
	}
	if f.Flag("stroke") {
		points += 0.20
	}
	if f.Flag("heartdisease") {
		points += 0.20
	}
	if f["physactivity"] == 0 {
		points += 0.05
	}
	if f["fruits"] == 0 {
		points += 0.03
	}
	if f["veggies"] == 0 {
		points += 0.03
	}
	if f["genhlth"] > 3 {
		points += 0.10
	}
	// BRFSS age categories, 8 and above is 55+
	if f["age"] > 7 {
		points += 0.15
	}
	return points
}
