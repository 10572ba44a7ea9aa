package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/triage/internal/config"
	"github.com/crimson-sun/triage/internal/logging"

	// Register source implementations.
	_ "github.com/crimson-sun/triage/internal/source/csv"
	_ "github.com/crimson-sun/triage/internal/source/sqlite"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Disaster message classifier",
	Long: `Trains a multi-label classifier that assigns disaster-response categories
to free-text messages, and applies a trained model to new messages.`,
	Example: `  # Train on the cleaned message store and save the model
  $ triage train ../data/DisasterResponse.db classifier.model

  # Classify a message with a trained model
  $ triage predict classifier.model "We need water and tents in Leogane"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
}

func main() {
	// Set up graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down...\n", sig)
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "triage: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the process logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logging.Init(os.Stderr, cfg.Log.Format == "json", logging.ParseLevel(cfg.Log.Level))
	return cfg, nil
}
