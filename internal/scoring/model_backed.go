package scoring

import (
	"context"

	"go.uber.org/zap"

	"cardialink-engine/internal/conditions"
	"cardialink-engine/internal/model"
)

// Predictor is a trained classifier reachable at runtime.
type Predictor interface {
	Predict(ctx context.Context, c model.Condition, f conditions.Features) (float64, error)
}

// ModelBackedScorer prefers the classifier and falls back to the heuristic
// for any request where the classifier cannot answer.
type ModelBackedScorer struct {
	predictor Predictor
	heuristic *HeuristicScorer
	logger    *zap.Logger
}

func NewModelBackedScorer(p Predictor, heuristic *HeuristicScorer, logger *zap.Logger) *ModelBackedScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelBackedScorer{
		predictor: p,
		heuristic: heuristic,
		logger:    logger.With(zap.String("condition", string(heuristic.Condition()))),
	}
}

func (s *ModelBackedScorer) Condition() model.Condition {
	return s.heuristic.Condition()
}

func (s *ModelBackedScorer) Score(ctx context.Context, in Input) Result {
	if in.ModelProbability != nil {
		return s.heuristic.fromModel(*in.ModelProbability, in.Features)
	}

	p, err := s.predictor.Predict(ctx, s.Condition(), in.Features)
	if err != nil {
		s.logger.Warn("model prediction failed, using heuristic", zap.Error(err))
		res := s.heuristic.heuristic(in.Features)
		res.Messages = append([]model.AssessmentMessage{{
			Level:     model.LevelWarning,
			Code:      model.CodeModelUnavailable,
			Condition: s.Condition(),
			Message:   "Trained model unavailable; score computed from risk factors",
		}}, res.Messages...)
		return res
	}

	return s.heuristic.fromModel(p, in.Features)
}
