package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalry/triage-console/internal/review"
	"github.com/signalry/triage-console/internal/upstream"
	"github.com/signalry/triage-console/pkg/logger"
)

func init() {
	briefingCmd.Flags().IntP("limit", "n", 5, "number of signals to show")
	briefingCmd.Flags().String("status", string(review.FilterPending), "status filter (pending, approved, all)")
	rootCmd.AddCommand(briefingCmd)
}

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Print the top signals from the review queue",
	RunE:  runBriefing,
}

func runBriefing(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")
	if !review.ValidFilter(status) {
		return fmt.Errorf("unknown status filter %q", status)
	}

	client := upstream.New(upstream.Config{
		BaseURL: cfg.UpstreamURL,
		Timeout: cfg.UpstreamTimeout,
		Logger:  logger.NewNop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout)
	defer cancel()

	items, err := client.ListSignals(ctx, status, limit)
	if err != nil {
		return fmt.Errorf("fetch signals: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No signals found.")
		return nil
	}

	rule := strings.Repeat("=", 72)
	fmt.Printf("\n%s\n", rule)
	fmt.Printf("TOP %d SIGNALS\n", len(items))
	fmt.Printf("%s\n", rule)

	for i, item := range items {
		cls := item.Classification
		fmt.Printf("\n[%d] @%s (%s)\n", i+1, item.Signal.Actor, item.Signal.Source)
		fmt.Printf("    Urgency: %s  Confidence: %.2f  Stage: %s\n", cls.Urgency, cls.Confidence, cls.IntentStage)
		fmt.Printf("    Pain: %s\n", cls.PrimaryPain)
		if cls.MomentumFlag {
			fmt.Println("    ⚡ momentum pattern")
		}
		if cls.RecommendedAction != "" {
			fmt.Printf("    → %s\n", cls.RecommendedAction)
		}

		snippet := strings.ReplaceAll(item.Signal.Text, "\n", " ")
		if len(snippet) > 85 {
			snippet = snippet[:85] + "..."
		}
		fmt.Printf("    %q\n", snippet)
		fmt.Printf("    [%s] %s\n", item.Signal.Timestamp.Format(time.DateTime), item.Signal.SourceID)
	}
	fmt.Println()
	return nil
}
