// Package main is the entry point for the Signalry triage console.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/signalry/triage-console/internal/config"
	"github.com/signalry/triage-console/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "console",
	Short:         "Signalry triage console",
	Long:          "Session-gated console for reviewing classified feedback signals and chatting with the triage agent.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func loadConfig() *config.Config {
	return config.Load()
}

func setupLogging(cfg *config.Config) *logger.Logger {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetGlobal(log)
	return log
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
