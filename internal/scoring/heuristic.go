package scoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cardialink-engine/internal/conditions"
	"cardialink-engine/internal/model"
)

type Options struct {
	// Jitter is the half-width of the uniform noise added to heuristic
	// scores. Zero disables it.
	Jitter     float64
	Source     Source
	Correction Correction
	Logger     *zap.Logger
}

// HeuristicScorer scores from the additive rule table. It is always
// available because it needs no external resource.
type HeuristicScorer struct {
	assessment conditions.Assessment
	opts       Options
	logger     *zap.Logger
}

func NewHeuristicScorer(a conditions.Assessment, opts Options) *HeuristicScorer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeuristicScorer{
		assessment: a,
		opts:       opts,
		logger:     logger.With(zap.String("condition", string(a.Condition()))),
	}
}

func (s *HeuristicScorer) Condition() model.Condition {
	return s.assessment.Condition()
}

// Rule returns the clamped heuristic score without jitter.
func (s *HeuristicScorer) Rule(f conditions.Features) float64 {
	return Clamp(s.assessment.Points(f))
}

func (s *HeuristicScorer) Score(ctx context.Context, in Input) Result {
	if in.ModelProbability != nil {
		return s.fromModel(*in.ModelProbability, in.Features)
	}
	return s.heuristic(in.Features)
}

func (s *HeuristicScorer) heuristic(f conditions.Features) Result {
	points := s.assessment.Points(f)
	p := Clamp(points + jitter(s.opts.Source, s.opts.Jitter))

	s.logger.Debug("heuristic score",
		zap.Float64("points", points),
		zap.Float64("probability", p),
		zap.String("source", string(model.SourceHeuristic)))

	return Result{
		Condition:   s.Condition(),
		Probability: p,
		Source:      model.SourceHeuristic,
	}
}

// fromModel passes a classifier output through, or blends it with the
// heuristic when the correction rule applies.
func (s *HeuristicScorer) fromModel(raw float64, f conditions.Features) Result {
	p := Clamp(raw)
	if !s.opts.Correction.appliesTo(s.Condition(), p) {
		s.logger.Debug("model score",
			zap.Float64("probability", p),
			zap.String("source", string(model.SourceModel)))
		return Result{
			Condition:   s.Condition(),
			Probability: p,
			Source:      model.SourceModel,
		}
	}

	rule := s.Rule(f)
	corrected := Clamp(s.opts.Correction.blend(p, rule))

	s.logger.Warn("model output above correction threshold, blending with heuristic",
		zap.Float64("model_probability", p),
		zap.Float64("heuristic", rule),
		zap.Float64("probability", corrected),
		zap.String("source", string(model.SourceCorrected)))

	return Result{
		Condition:   s.Condition(),
		Probability: corrected,
		Source:      model.SourceCorrected,
		Messages: []model.AssessmentMessage{{
			Level:     model.LevelWarning,
			Code:      model.CodeModelOutputCorrected,
			Condition: s.Condition(),
			Message:   fmt.Sprintf("Model probability %.3f exceeds %.2f; blended with heuristic %.3f to %.3f", p, s.opts.Correction.Threshold, rule, corrected),
		}},
	}
}
