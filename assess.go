package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cardialink-engine/internal/config"
	"cardialink-engine/internal/model"
)

func newAssessCmd() *cobra.Command {
	var file string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score an assessment request offline and print the tier",
		Long: `Score an assessment request offline and print the tier.

The request has the same shape as POST /api/v1/assess and is read from
--file, or from stdin when no file is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			req, err := readRequest(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			eng, _, err := buildEngine(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			resp := eng.Process(context.Background(), req)

			if asJSON {
				out, err := json.MarshalIndent(resp, "", "  ")
				if err != nil {
					return errors.Wrap(err, "encode response")
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			printResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "request JSON file (default stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full JSON response")
	return cmd
}

func readRequest(stdin io.Reader, file string) (*model.AssessmentRequest, error) {
	var data []byte
	var err error
	if file == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read request")
	}

	var req model.AssessmentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.Wrap(err, "decode request")
	}
	return &req, nil
}

func riskColor(p float64) *color.Color {
	switch {
	case p > 0.7:
		return color.New(color.FgRed, color.Bold)
	case p > 0.3:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func printResponse(w io.Writer, resp *model.AssessmentResponse) {
	res := resp.AssessmentResult

	for _, c := range res.Conditions {
		fmt.Fprintf(w, "%-16s %s  %s\n", c.Condition.Title(),
			riskColor(c.Probability).Sprintf("%5.1f%%", c.Percent),
			c.Label)
	}

	for _, m := range res.Messages {
		level := color.YellowString(m.Level)
		if m.Level == model.LevelCritical {
			level = color.RedString(m.Level)
		}
		fmt.Fprintf(w, "%s %s: %s\n", level, m.Code, m.Message)
	}

	if res.Composite == nil {
		fmt.Fprintf(w, "Outcome: %s\n", color.RedString(resp.AssessmentMetadata.AssessmentOutcome))
		return
	}

	tc := riskColor(res.Composite.Score)
	fmt.Fprintf(w, "%-16s %s  %s\n", "Composite", tc.Sprintf("%5.1f%%", res.Composite.Percent), res.Composite.Label)
	fmt.Fprintf(w, "%-16s %s  %d - %d %s\n", "Tier", tc.Sprint(res.Premium.Tier),
		res.Premium.MinPremium, res.Premium.MaxPremium, res.Premium.Currency)
}
