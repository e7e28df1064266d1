package conditions

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"cardialink-engine/internal/model"
)

// Field declares one questionnaire input with its valid range and the value
// substituted when a submission is missing or unusable.
type Field struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Default float64
	Step    float64
	Options []Option
}

type Option struct {
	Value float64
	Label string
}

var yesNo = []Option{{0, "No"}, {1, "Yes"}}

func (f Field) valid(v float64) bool {
	return v >= f.Min && v <= f.Max
}

func (f Field) clamp(v float64) float64 {
	return math.Max(f.Min, math.Min(f.Max, v))
}

// Features is a validated field set keyed by field name.
type Features map[string]float64

// Flag reports whether a 0/1 indicator field is set.
func (f Features) Flag(name string) bool {
	return f[name] > 0
}

// Parse validates raw against fields. Missing or blank values take the
// field default silently. Malformed values take the default with a
// FIELD_DEFAULTED warning; finite values outside the field range are
// bounded to it with a FIELD_CLAMPED warning. Unknown keys are ignored.
func Parse(c model.Condition, fields []Field, raw model.RawFields) (Features, []model.AssessmentMessage) {
	features := make(Features, len(fields))
	var msgs []model.AssessmentMessage

	for _, f := range fields {
		rv, present := raw[f.Name]
		if !present || isBlank(rv) {
			features[f.Name] = f.Default
			continue
		}

		v, ok := toFloat(rv)
		if !ok {
			features[f.Name] = f.Default
			msgs = append(msgs, model.AssessmentMessage{
				Level:     model.LevelWarning,
				Code:      model.CodeFieldDefaulted,
				Condition: c,
				Message:   fmt.Sprintf("Field %s value %v is not a number; using default %g", f.Name, rv, f.Default),
			})
			continue
		}
		if !f.valid(v) {
			bounded := f.clamp(v)
			features[f.Name] = bounded
			msgs = append(msgs, model.AssessmentMessage{
				Level:     model.LevelWarning,
				Code:      model.CodeFieldClamped,
				Condition: c,
				Message:   fmt.Sprintf("Field %s value %g is outside [%g, %g]; using %g", f.Name, v, f.Min, f.Max, bounded),
			})
			continue
		}
		features[f.Name] = v
	}

	return features, msgs
}

// Defaults returns the feature set used when nothing was submitted.
func Defaults(fields []Field) Features {
	features := make(Features, len(fields))
	for _, f := range fields {
		features[f.Name] = f.Default
	}
	return features
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
