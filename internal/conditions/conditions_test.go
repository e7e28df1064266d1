package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardialink-engine/internal/model"
)

func TestRegistryCoversEveryCondition(t *testing.T) {
	for _, c := range model.Conditions {
		a, ok := Get(c)
		require.True(t, ok, "no assessment registered for %s", c)
		assert.Equal(t, c, a.Condition())
		assert.NotEmpty(t, a.Fields())
	}

	_, ok := Get(model.Condition("hepatic"))
	assert.False(t, ok)
}

func TestParseSubstitutesDefaults(t *testing.T) {
	a, _ := Get(model.ConditionCardiac)

	features, msgs := Parse(model.ConditionCardiac, a.Fields(), model.RawFields{
		"age":      "61",
		"sex":      true,
		"chol":     "not-a-number",
		"trestbps": 999.0,
		"oldpeak":  "",
		"unknown":  42.0,
	})

	assert.Equal(t, 61.0, features["age"])
	assert.Equal(t, 1.0, features["sex"])
	assert.Equal(t, 200.0, features["chol"], "malformed value takes the default")
	assert.Equal(t, 200.0, features["trestbps"], "out-of-range value is bounded to the field max")
	assert.Equal(t, 0.0, features["oldpeak"], "blank value takes the default")
	assert.Equal(t, 150.0, features["thalach"], "missing value takes the default")
	assert.NotContains(t, features, "unknown")

	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Equal(t, model.LevelWarning, m.Level)
		assert.Equal(t, model.ConditionCardiac, m.Condition)
	}
	assert.Equal(t, model.CodeFieldClamped, msgs[0].Code, "trestbps")
	assert.Equal(t, model.CodeFieldDefaulted, msgs[1].Code, "chol")
}

func TestParseClampsOutOfRange(t *testing.T) {
	a, _ := Get(model.ConditionRenal)

	features, msgs := Parse(model.ConditionRenal, a.Fields(), model.RawFields{
		"bp":  190.0,
		"sc":  "45",
		"bgr": 10.0,
		"bu":  "NaN",
	})

	assert.Equal(t, 180.0, features["bp"])
	assert.Equal(t, 40.0, features["sc"])
	assert.Equal(t, 70.0, features["bgr"], "below range is bounded to the field min")
	assert.Equal(t, 0.0, features["bu"], "NaN takes the default")

	codes := make([]string, 0, len(msgs))
	for _, m := range msgs {
		codes = append(codes, m.Code)
	}
	// field order: bp, bgr, bu, sc
	assert.Equal(t, []string{
		model.CodeFieldClamped, model.CodeFieldClamped, model.CodeFieldDefaulted, model.CodeFieldClamped,
	}, codes)
}

// A reading beyond a field's range must never score milder than the range
// limit it exceeds.
func TestParsedScoresAreMonotonicPastRange(t *testing.T) {
	protective := map[string]bool{"physactivity": true, "fruits": true, "veggies": true}

	score := func(a Assessment, c model.Condition, name string, v float64) float64 {
		features, _ := Parse(c, a.Fields(), model.RawFields{name: v})
		return a.Points(features)
	}

	for _, c := range model.Conditions {
		a, _ := Get(c)
		for _, f := range a.Fields() {
			atMax := score(a, c, f.Name, f.Max)
			atMin := score(a, c, f.Name, f.Min)
			for _, over := range []float64{0.5, 1, 10, 1000} {
				aboveMax := score(a, c, f.Name, f.Max+over)
				belowMin := score(a, c, f.Name, f.Min-over)
				if protective[f.Name] {
					assert.LessOrEqual(t, aboveMax, atMax+1e-12, "%s/%s above max", c, f.Name)
					assert.GreaterOrEqual(t, belowMin, atMin-1e-12, "%s/%s below min", c, f.Name)
					continue
				}
				assert.GreaterOrEqual(t, aboveMax, atMax-1e-12, "%s/%s above max", c, f.Name)
				assert.LessOrEqual(t, belowMin, atMin+1e-12, "%s/%s below min", c, f.Name)
			}
		}
	}

	tests := []struct {
		cond  model.Condition
		field string
		limit float64
		past  float64
	}{
		{model.ConditionRenal, "bp", 180, 190},
		{model.ConditionRenal, "sc", 40, 45},
		{model.ConditionCardiac, "trestbps", 200, 210},
		{model.ConditionCardiac, "age", 100, 101},
	}
	for _, tc := range tests {
		a, _ := Get(tc.cond)
		assert.InDelta(t, score(a, tc.cond, tc.field, tc.limit), score(a, tc.cond, tc.field, tc.past), 1e-9,
			"%s/%s", tc.cond, tc.field)
	}
}

func TestParseEmptySubmissionMatchesDefaults(t *testing.T) {
	for _, c := range model.Conditions {
		a, _ := Get(c)
		features, msgs := Parse(c, a.Fields(), nil)
		assert.Empty(t, msgs)
		assert.Equal(t, Defaults(a.Fields()), features)
	}
}

func TestCardiacPoints(t *testing.T) {
	a := &CardiacAssessment{}

	defaults := Defaults(a.Fields())
	assert.InDelta(t, 0.05, a.Points(defaults), 1e-9, "default age 50 scores the >40 band")

	worst := Features{
		"age": 70, "sex": 1, "cp": 3, "trestbps": 160, "chol": 300, "fbs": 1,
		"exang": 1, "oldpeak": 3, "ca": 4, "thal": 3,
	}
	// .15 + .10 + .30 + .15 + .15 + .05 + .20 + .20 + .60 + .15
	assert.InDelta(t, 2.05, a.Points(worst), 1e-9)

	tests := []struct {
		name     string
		features Features
		want     float64
	}{
		{"age 41", Features{"age": 41}, 0.05},
		{"age 51", Features{"age": 51}, 0.10},
		{"age 61", Features{"age": 61}, 0.15},
		{"bp 121", Features{"trestbps": 121}, 0.05},
		{"bp 131", Features{"trestbps": 131}, 0.10},
		{"bp 141", Features{"trestbps": 141}, 0.15},
		{"chol 201", Features{"chol": 201}, 0.10},
		{"chol 241", Features{"chol": 241}, 0.15},
		{"oldpeak 1.5", Features{"oldpeak": 1.5}, 0.10},
		{"oldpeak 2.5", Features{"oldpeak": 2.5}, 0.20},
		{"two vessels", Features{"ca": 2}, 0.30},
		{"thal 2", Features{"thal": 2}, 0},
		{"thal 3", Features{"thal": 3}, 0.15},
		{"cp 2", Features{"cp": 2}, 0.20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, a.Points(tc.features), 1e-9)
		})
	}
}

func TestRenalPoints(t *testing.T) {
	a := &RenalAssessment{}

	assert.Zero(t, a.Points(Defaults(a.Fields())))

	all := Features{"age": 65, "bp": 150, "al": 2, "su": 2, "bgr": 250, "bu": 120, "sc": 2}
	assert.InDelta(t, 1.0, a.Points(all), 1e-9)

	boundary := Features{"age": 60, "bp": 140, "al": 1, "su": 1, "bgr": 200, "bu": 100, "sc": 1.5}
	assert.Zero(t, a.Points(boundary), "thresholds are strict")
}

func TestMetabolicPoints(t *testing.T) {
	a := &MetabolicAssessment{}

	// physical activity, fruit and vegetables all default to "no"
	assert.InDelta(t, 0.11, a.Points(Defaults(a.Fields())), 1e-9)

	healthy := Features{"physactivity": 1, "fruits": 1, "veggies": 1, "genhlth": 1, "age": 3, "bmi": 22}
	assert.Zero(t, a.Points(healthy))

	worst := Features{
		"highbp": 1, "highchol": 1, "bmi": 35, "smoker": 1, "stroke": 1, "heartdisease": 1,
		"genhlth": 5, "age": 10,
	}
	assert.InDelta(t, 1.31, a.Points(worst), 1e-9)

	assert.InDelta(t, 0.15, a.Points(Features{"bmi": 30, "physactivity": 1, "fruits": 1, "veggies": 1}), 1e-9, "bmi threshold is inclusive")
}

// Raising any risk-contributing field must never lower the point total.
func TestPointsAreMonotonic(t *testing.T) {
	protective := map[string]bool{"physactivity": true, "fruits": true, "veggies": true}

	for _, c := range model.Conditions {
		a, _ := Get(c)
		for _, f := range a.Fields() {
			step := f.Step
			if step == 0 {
				step = 1
			}
			base := Defaults(a.Fields())
			prev := -1.0
			if protective[f.Name] {
				prev = 1e9
			}
			for v := f.Min; v <= f.Max; v += step {
				base[f.Name] = v
				got := a.Points(base)
				if protective[f.Name] {
					require.LessOrEqual(t, got, prev+1e-12, "%s/%s at %v", c, f.Name, v)
				} else {
					require.GreaterOrEqual(t, got, prev-1e-12, "%s/%s at %v", c, f.Name, v)
				}
				prev = got
			}
		}
	}
}
