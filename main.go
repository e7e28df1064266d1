package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cardialink-engine/internal/composite"
	"cardialink-engine/internal/config"
	"cardialink-engine/internal/engine"
	"cardialink-engine/internal/model"
	"cardialink-engine/internal/modelclient"
	"cardialink-engine/internal/premium"
	"cardialink-engine/internal/scoring"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "cardialink-engine",
		Short: "CardiaLink health risk and premium tier engine",
		Long: `CardiaLink health risk and premium tier engine

Examples:
  # Serve the questionnaire and JSON API
  cardialink-engine serve

  # Score a request offline
  cardialink-engine assess --file request.json
`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./cardialink.yaml)")

	serveCmd := newServeCmd()
	rootCmd.AddCommand(serveCmd, newAssessCmd())
	rootCmd.RunE = serveCmd.RunE

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildEngine wires scorers, combiner and tier mapper from configuration.
// The boolean reports whether a trained-model endpoint is in use.
func buildEngine(cfg *config.Config, logger *zap.Logger) (*engine.Engine, bool, error) {
	calc, err := composite.NewCalculator(
		cfg.CompositeWeights(),
		composite.Override{Threshold: cfg.Override.Threshold, Floor: cfg.Override.Floor},
	)
	if err != nil {
		return nil, false, err
	}

	mapper, err := premium.NewMapper(cfg.Premium.Table)
	if err != nil {
		return nil, false, err
	}

	modelConditions, err := cfg.ModelConditions()
	if err != nil {
		return nil, false, err
	}

	var predictor scoring.Predictor
	if cfg.Model.URL != "" {
		predictor = modelclient.New(modelclient.Config{URL: cfg.Model.URL, Timeout: cfg.Model.Timeout}, logger)
	}

	scorers := scoring.NewSet(scoring.SetConfig{
		Jitter: cfg.Jitters(),
		Seed:   cfg.Jitter.Seed,
		Correction: scoring.Correction{
			Enabled:     cfg.Model.Correction.Enabled,
			Threshold:   cfg.Model.Correction.Threshold,
			ModelWeight: cfg.Model.Correction.ModelWeight,
			Conditions:  []model.Condition{model.ConditionCardiac},
		},
		ModelConditions: modelConditions,
	}, predictor, logger)

	logger.Info("engine configured",
		zap.String("premium_table", cfg.Premium.Table),
		zap.Float64("weight_cardiac", cfg.Weights.Cardiac),
		zap.Float64("weight_renal", cfg.Weights.Renal),
		zap.Float64("weight_metabolic", cfg.Weights.Metabolic),
		zap.Bool("model", predictor != nil))

	return engine.New(scorers, calc, mapper, logger), predictor != nil, nil
}
