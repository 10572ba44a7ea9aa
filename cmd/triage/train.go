package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/crimson-sun/triage/internal/config"
	"github.com/crimson-sun/triage/internal/output"
	"github.com/crimson-sun/triage/internal/output/file"
	"github.com/crimson-sun/triage/internal/output/multi"
	"github.com/crimson-sun/triage/internal/output/stdout"
	"github.com/crimson-sun/triage/internal/output/webhook"
	"github.com/crimson-sun/triage/internal/trainer"
)

const trainUsage = `Please provide the filepath of the disaster messages database as the
first argument and the filepath of the model file to save the model to as
the second argument.

Example: triage train ../data/DisasterResponse.db classifier.model`

var trainCmd = &cobra.Command{
	Use:   "train DATABASE MODEL",
	Short: "Train, evaluate and save a classifier",
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) != 2 {
			return errors.New(trainUsage)
		}
		return nil
	},
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	searcher, err := cfg.Searcher()
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	out, err := buildOutput(cfg, runID)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			slog.Warn("closing report output failed", "error", err)
		}
	}()

	t := trainer.New(trainer.Options{
		RunID:    runID,
		Source:   cfg.SourceConfig(""),
		TestSize: cfg.Split.TestSize,
		Seed:     cfg.Seed,
		Search:   searcher,
		Output:   out,
		Logger:   slog.Default(),
	})
	res, err := t.Run(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Best parameters: %s (score %.4f)\n", res.Search.Best, res.Search.BestScore)
	return nil
}

// buildOutput fans reports out to stdout plus any configured file and
// webhook destinations.
func buildOutput(cfg config.Config, runID string) (output.Output, error) {
	outs := []output.Output{stdout.New(cfg.Output.Format == "json", cfg.Output.Pretty)}
	if cfg.Output.ReportPath != "" {
		f, err := file.New(cfg.Output.ReportPath, file.WithRunID(runID))
		if err != nil {
			return nil, err
		}
		outs = append(outs, f)
	}
	if cfg.Output.WebhookURL != "" {
		outs = append(outs, webhook.New(cfg.Output.WebhookURL,
			webhook.WithHeaders(cfg.Output.WebhookHeaders),
			webhook.WithRunID(runID),
		))
	}
	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}
