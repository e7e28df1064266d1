package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"cardialink-engine/internal/composite"
	"cardialink-engine/internal/conditions"
	"cardialink-engine/internal/model"
	"cardialink-engine/internal/premium"
	"cardialink-engine/internal/scoring"
)

type Engine struct {
	scorers scoring.Set
	calc    *composite.Calculator
	mapper  *premium.Mapper
	logger  *zap.Logger
}

func New(scorers scoring.Set, calc *composite.Calculator, mapper *premium.Mapper, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{scorers: scorers, calc: calc, mapper: mapper, logger: logger}
}

// ScoreCondition validates one step's raw fields and scores them. Field
// warnings come first in the returned messages, followed by any raised by
// the scorer. Message IDs are left for the caller to assign.
func (e *Engine) ScoreCondition(ctx context.Context, c model.Condition, raw model.RawFields, modelProbability *float64) scoring.Result {
	a, ok := conditions.Get(c)
	scorer, hasScorer := e.scorers[c]
	if !ok || !hasScorer {
		return scoring.Result{
			Condition: c,
			Messages: []model.AssessmentMessage{{
				Level:     model.LevelCritical,
				Code:      model.CodeUnknownCondition,
				Condition: c,
				Message:   fmt.Sprintf("Unknown condition: %s", c),
			}},
		}
	}

	features, fieldMsgs := conditions.Parse(c, a.Fields(), raw)
	res := scorer.Score(ctx, scoring.Input{Features: features, ModelProbability: modelProbability})
	res.Messages = append(fieldMsgs, res.Messages...)
	return res
}

// Score is ScoreCondition shaped for display: message IDs assigned and the
// probability rounded into a percentage and label.
func (e *Engine) Score(ctx context.Context, c model.Condition, raw model.RawFields, modelProbability *float64) *model.ScoreResponse {
	res := e.ScoreCondition(ctx, c, raw, modelProbability)

	msgs := make([]model.AssessmentMessage, 0, len(res.Messages))
	var msgIndexes []int
	for _, m := range res.Messages {
		m.ID = len(msgs)
		msgs = append(msgs, m)
		msgIndexes = append(msgIndexes, m.ID)
	}

	e.logger.Debug("condition scored",
		zap.String("condition", string(c)),
		zap.Float64("probability", res.Probability),
		zap.String("source", string(res.Source)),
		zap.Int("messages", len(msgs)))

	return &model.ScoreResponse{
		Result:   conditionResult(c, res.Probability, res.Source, msgIndexes),
		Messages: msgs,
	}
}

// Process scores all three conditions from a single request and combines
// them. Every condition always yields a probability, so the outcome is
// SUCCESS unless a scorer raised a CRITICAL message.
func (e *Engine) Process(ctx context.Context, req *model.AssessmentRequest) *model.AssessmentResponse {
	start := time.Now()

	var allMessages []model.AssessmentMessage
	results := make([]model.ConditionResult, 0, len(model.Conditions))
	probs := make(map[model.Condition]float64, len(model.Conditions))
	hasCritical := false

	for _, c := range model.Conditions {
		var supplied *float64
		if p, ok := req.ModelProbability(c); ok {
			supplied = &p
		}

		res := e.ScoreCondition(ctx, c, req.Fields(c), supplied)

		var msgIndexes []int
		for _, m := range res.Messages {
			m.ID = len(allMessages)
			allMessages = append(allMessages, m)
			msgIndexes = append(msgIndexes, m.ID)
			if m.Level == model.LevelCritical {
				hasCritical = true
			}
		}

		probs[c] = res.Probability
		results = append(results, conditionResult(c, res.Probability, res.Source, msgIndexes))
	}

	result := model.AssessmentResult{Conditions: results}
	outcome := model.OutcomeFailure
	if !hasCritical {
		outcome = model.OutcomeSuccess
		allMessages = e.combine(probs, &result, allMessages)
	}
	result.Messages = allMessages

	return e.respond(start, outcome, result)
}

// Evaluate recomputes the composite and tier from stored scores. It is
// idempotent: the same scores always produce the same composite and tier.
// A missing score fails the evaluation with ASSESSMENT_INCOMPLETE.
func (e *Engine) Evaluate(scores map[model.Condition]float64, sources map[model.Condition]model.ScoreSource) *model.AssessmentResponse {
	start := time.Now()

	var allMessages []model.AssessmentMessage
	results := make([]model.ConditionResult, 0, len(model.Conditions))
	complete := true

	for _, c := range model.Conditions {
		p, ok := scores[c]
		if !ok {
			complete = false
			allMessages = append(allMessages, model.AssessmentMessage{
				ID:        len(allMessages),
				Level:     model.LevelCritical,
				Code:      model.CodeAssessmentIncomplete,
				Condition: c,
				Message:   fmt.Sprintf("No %s score recorded", c.Title()),
			})
			continue
		}
		results = append(results, conditionResult(c, scoring.Clamp(p), sources[c], nil))
	}

	result := model.AssessmentResult{Conditions: results}
	outcome := model.OutcomeFailure
	if complete {
		outcome = model.OutcomeSuccess
		allMessages = e.combine(scores, &result, allMessages)
	}
	result.Messages = allMessages

	return e.respond(start, outcome, result)
}

func (e *Engine) combine(probs map[model.Condition]float64, result *model.AssessmentResult, msgs []model.AssessmentMessage) []model.AssessmentMessage {
	comp := e.calc.Combine(probs)
	quote := e.mapper.Lookup(comp.Score)

	if comp.OverrideApplied {
		msgs = append(msgs, model.AssessmentMessage{
			ID:        len(msgs),
			Level:     model.LevelWarning,
			Code:      model.CodeHighRiskOverride,
			Condition: comp.Trigger,
			Message:   fmt.Sprintf("%s risk above threshold; composite raised from %.3f to %.3f", comp.Trigger.Title(), comp.Weighted, comp.Score),
		})
		e.logger.Info("high risk override applied",
			zap.String("condition", string(comp.Trigger)),
			zap.Float64("weighted", comp.Weighted),
			zap.Float64("probability", comp.Score))
	}

	result.Composite = &model.CompositeResult{
		Weighted:        comp.Weighted,
		Score:           comp.Score,
		Percent:         percent(comp.Score),
		Label:           scoring.Label(comp.Score),
		OverrideApplied: comp.OverrideApplied,
	}
	result.Premium = &model.PremiumQuote{
		Table:      quote.Table,
		Tier:       quote.Tier,
		MinPremium: quote.MinPremium,
		MaxPremium: quote.MaxPremium,
		Currency:   quote.Currency,
	}
	return msgs
}

func (e *Engine) respond(start time.Time, outcome string, result model.AssessmentResult) *model.AssessmentResponse {
	elapsed := time.Since(start)
	now := time.Now().UTC()

	if result.Messages == nil {
		result.Messages = []model.AssessmentMessage{}
	}

	resp := &model.AssessmentResponse{
		AssessmentMetadata: model.AssessmentMetadata{
			AssessmentID:          uuid.New().String(),
			AssessmentStartedAt:   now.Add(-elapsed).Format(time.RFC3339),
			AssessmentCompletedAt: now.Format(time.RFC3339),
			AssessmentDurationMs:  elapsed.Milliseconds(),
			AssessmentOutcome:     outcome,
		},
		AssessmentResult: result,
	}

	fields := []zap.Field{
		zap.String("assessment_id", resp.AssessmentMetadata.AssessmentID),
		zap.String("outcome", outcome),
		zap.Int("messages", len(result.Messages)),
		zap.Duration("elapsed", elapsed),
	}
	if result.Composite != nil {
		fields = append(fields,
			zap.Float64("composite", result.Composite.Score),
			zap.String("tier", result.Premium.Tier))
	}
	e.logger.Info("assessment completed", fields...)

	return resp
}

func conditionResult(c model.Condition, p float64, src model.ScoreSource, msgIndexes []int) model.ConditionResult {
	return model.ConditionResult{
		Condition:      c,
		Probability:    p,
		Percent:        percent(p),
		Label:          scoring.Label(p),
		Source:         src,
		MessageIndexes: msgIndexes,
	}
}

// percent is the display percentage, one decimal place.
func percent(p float64) float64 {
	r, err := stats.Round(p*100, 1)
	if err != nil {
		return 0
	}
	return r
}
