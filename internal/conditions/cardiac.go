package conditions

import "cardialink-engine/internal/model"

var cardiacFields = []Field{
	{Name: "age", Label: "Age", Min: 20, Max: 100, Default: 50},
	{Name: "sex", Label: "Sex", Min: 0, Max: 1, Default: 0, Options: []Option{{1, "Male"}, {0, "Female"}}},
	{Name: "cp", Label: "Chest Pain Type", Min: 0, Max: 3, Default: 0, Options: []Option{
		{0, "Typical Angina"}, {1, "Atypical Angina"}, {2, "Non-anginal Pain"}, {3, "Asymptomatic"},
	}},
	{Name: "trestbps", Label: "Resting Blood Pressure (mm Hg)", Min: 90, Max: 200, Default: 120},
	{Name: "chol", Label: "Serum Cholesterol (mg/dl)", Min: 100, Max: 600, Default: 200},
	{Name: "fbs", Label: "Fasting Blood Sugar > 120 mg/dl", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "restecg", Label: "Resting ECG", Min: 0, Max: 2, Default: 0, Options: []Option{
		{0, "Normal"}, {1, "ST-T Wave Abnormality"}, {2, "Left Ventricular Hypertrophy"},
	}},
	{Name: "thalach", Label: "Maximum Heart Rate", Min: 60, Max: 220, Default: 150},
	{Name: "exang", Label: "Exercise Induced Angina", Min: 0, Max: 1, Default: 0, Options: yesNo},
	{Name: "oldpeak", Label: "ST Depression", Min: 0, Max: 10, Default: 0, Step: 0.1},
	{Name: "slope", Label: "Slope of Peak Exercise ST", Min: 0, Max: 2, Default: 0, Options: []Option{
		{0, "Upsloping"}, {1, "Flat"}, {2, "Downsloping"},
	}},
	{Name: "ca", Label: "Major Vessels Colored by Fluoroscopy", Min: 0, Max: 4, Default: 0, Options: []Option{
		{0, "0"}, {1, "1"}, {2, "2"}, {3, "3"}, {4, "4"},
	}},
	{Name: "thal", Label: "Thalassemia", Min: 0, Max: 3, Default: 0, Options: []Option{
		{0, "Normal"}, {1, "Fixed Defect"}, {2, "Reversible Defect"}, {3, "Unknown"},
	}},
}

type CardiacAssessment struct{}

func (a *CardiacAssessment) Condition() model.Condition { return model.ConditionCardiac }

func (a *CardiacAssessment) Fields() []Field { return cardiacFields }

func (a *CardiacAssessment) Points(f Features) float64 {
	var points float64

	switch age := f["age"]; {
	case age > 60:
		points += 0.15
	case age > 50:
		points += 0.10
	case age > 40:
		points += 0.05
	}

	if f["sex"] == 1 {
		points += 0.10
	}

	if cp := f["cp"]; cp > 0 {
		points += 0.10 * cp
	}

	switch bp := f["trestbps"]; {
	case bp > 140:
		points += 0.15
	case bp > 130:
		points += 0.10
	case bp > 120:
		points += 0.05
	}

	switch chol := f["chol"]; {
	case chol > 240:
		points += 0.15
	case chol > 200:
		points += 0.10
	}

	if f.Flag("fbs") {
		points += 0.05
	}

	if f.Flag("exang") {
		points += 0.20
	}

	switch st := f["oldpeak"]; {
	case st > 2:
		points += 0.20
	case st > 1:
		points += 0.10
	}

	if ca := f["ca"]; ca > 0 {
		points += 0.15 * ca
	}

	// only code 3 (unknown) scores; 2 is a reversible defect
	if f["thal"] > 2 {
		points += 0.15
	}

	return points
}
