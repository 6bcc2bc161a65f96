package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/council-mode/council/internal/core"
	"github.com/council-mode/council/internal/council"
)

var deliberateCmd = &cobra.Command{
	Use:   "deliberate [query]",
	Short: "Run a council deliberation for a query",
	Long: `Run the full deliberation pipeline for a single query: trigger
evaluation, parallel dispatch to the configured providers, agreement
analysis, weighting and synthesis.

Examples:
  # Force a deliberation
  council deliberate --force "Should I refinance my mortgage at 6.5%?"

  # Let the trigger evaluator decide
  council deliberate --user alice --tier pro "What does this contract clause mean?"

  # Emit the raw deliberation as JSON
  council deliberate --force --json "Is this diagnosis plausible?"`,
	Args: cobra.ExactArgs(1),
	RunE: runDeliberate,
}

var (
	deliberateUser   string
	deliberateTier   string
	deliberateModels []string
	deliberateForce  bool
	deliberateJSON   bool
)

func init() {
	rootCmd.AddCommand(deliberateCmd)

	deliberateCmd.Flags().StringVar(&deliberateUser, "user", "",
		"user ID for quota tracking and trigger context")
	deliberateCmd.Flags().StringVar(&deliberateTier, "tier", "free",
		"subscription tier (free, pro, enterprise)")
	deliberateCmd.Flags().StringSliceVar(&deliberateModels, "models", nil,
		"override the council roster (e.g. claude,gpt)")
	deliberateCmd.Flags().BoolVarP(&deliberateForce, "force", "f", false,
		"invoke the council regardless of auto-trigger rules")
	deliberateCmd.Flags().BoolVar(&deliberateJSON, "json", false,
		"print the full deliberation as JSON")
}

func runDeliberate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := buildLogger(cfg)

	engine, db, quotaSvc, err := buildEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	query := args[0]
	if deliberateForce && !strings.HasPrefix(strings.TrimSpace(query), "/council") {
		query = "/council " + query
	}

	req := council.DeliberateRequest{
		Query:  query,
		UserID: deliberateUser,
		Models: deliberateModels,
	}
	if deliberateUser != "" {
		used, err := quotaSvc.UsedToday(cmd.Context(), deliberateUser)
		if err != nil {
			logger.Warn("failed to read quota, assuming zero usage", "error", err)
		}
		req.Context = &council.TriggerContext{
			UserID:           deliberateUser,
			Tier:             core.Tier(deliberateTier),
			QueriesUsedToday: used,
		}
	}

	outcome, err := engine.Deliberate(cmd.Context(), req)
	if err != nil {
		return err
	}

	if outcome.Deliberation == nil {
		fmt.Printf("Council not triggered (%s)\n", outcome.Decision.Reason)
		return nil
	}

	if deliberateJSON {
		data, err := council.FormatAsJSON(outcome.Deliberation)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printDeliberation(outcome)
	return nil
}

func printDeliberation(outcome *council.DeliberateOutcome) {
	d := outcome.Deliberation
	summary := council.FormatSummary(d)

	weights := make(map[string]float64, len(d.Synthesis.Weights))
	for _, w := range d.Synthesis.Weights {
		weights[w.ModelID] = w.Adjusted
	}

	fmt.Println(d.Synthesis.FinalText)
	fmt.Println()
	fmt.Println(rule())
	fmt.Printf("Consensus: %s (%.0f/100)\n", summary.Consensus.Level, d.Agreement.Score)
	for _, m := range summary.Models {
		fmt.Printf("  %-10s confidence %.0f  weight %.0f  %dms  [%s]\n",
			m.Name, m.Confidence, weights[m.ModelID], m.LatencyMS, m.Status)
	}
	if len(summary.Disagreements) > 0 {
		fmt.Println("Disagreements:")
		for _, dp := range summary.Disagreements {
			fmt.Printf("  - %s\n", dp.Topic)
		}
	}
	fmt.Printf("Cost: $%.4f  Latency: %dms  View: %s\n",
		d.CostUSD, d.TotalLatencyMS, outcome.Display)
}

// rule renders a horizontal divider sized to the terminal.
func rule() string {
	width := 60
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < width {
		width = w
	}
	return strings.Repeat("-", width)
}
