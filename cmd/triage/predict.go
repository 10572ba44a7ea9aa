package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/triage/pkg/triage"
)

var (
	threshold   float64
	predictJSON bool
)

var predictCmd = &cobra.Command{
	Use:   "predict MODEL TEXT...",
	Short: "Classify messages with a trained model",
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) < 2 {
			return errors.New("predict needs a model file and at least one message")
		}
		return nil
	},
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().Float64Var(&threshold, "threshold", 0.5, "probability a category must exceed")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "print predictions as JSON lines")
}

func runPredict(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	c, err := triage.Open(args[0], triage.WithThreshold(threshold), triage.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	preds, err := c.ClassifyBatch(args[1:])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if predictJSON {
		enc := json.NewEncoder(w)
		for _, p := range preds {
			if err := enc.Encode(p); err != nil {
				return err
			}
		}
		return nil
	}
	for _, p := range preds {
		cats := "(none)"
		if len(p.Categories) > 0 {
			cats = strings.Join(p.Categories, ", ")
		}
		fmt.Fprintf(w, "%s\n  -> %s\n", p.Text, cats)
	}
	return nil
}
