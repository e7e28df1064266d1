package scoring

import (
	"go.uber.org/zap"

	"cardialink-engine/internal/conditions"
	"cardialink-engine/internal/model"
)

type SetConfig struct {
	Jitter map[model.Condition]float64
	Seed   int64
	// Source overrides the seeded generator, mainly for tests.
	Source     Source
	Correction Correction
	// ModelConditions lists the conditions scored by the predictor when one
	// is configured.
	ModelConditions []model.Condition
}

func DefaultJitter() map[model.Condition]float64 {
	return map[model.Condition]float64{
		model.ConditionCardiac:   0.1,
		model.ConditionRenal:     0.1,
		model.ConditionMetabolic: 0.05,
	}
}

// Set holds the scorer chosen for each condition at startup.
type Set map[model.Condition]Scorer

// NewSet builds a scorer per condition. Conditions listed in
// cfg.ModelConditions get a ModelBackedScorer when predictor is non-nil;
// every other condition is scored heuristically.
func NewSet(cfg SetConfig, predictor Predictor, logger *zap.Logger) Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	src := cfg.Source
	if src == nil {
		src = NewSource(cfg.Seed)
	}

	modelBacked := make(map[model.Condition]bool, len(cfg.ModelConditions))
	for _, c := range cfg.ModelConditions {
		modelBacked[c] = true
	}

	set := make(Set, len(model.Conditions))
	for _, c := range model.Conditions {
		a, _ := conditions.Get(c)
		h := NewHeuristicScorer(a, Options{
			Jitter:     cfg.Jitter[c],
			Source:     src,
			Correction: cfg.Correction,
			Logger:     logger,
		})
		if predictor != nil && modelBacked[c] {
			set[c] = NewModelBackedScorer(predictor, h, logger)
			logger.Info("scorer selected", zap.String("condition", string(c)), zap.String("scorer", "model"))
			continue
		}
		set[c] = h
		logger.Info("scorer selected", zap.String("condition", string(c)), zap.String("scorer", "heuristic"))
	}
	return set
}
