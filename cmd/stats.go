package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/stats"
	"github.com/workairs/wa-cli/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show chat usage and response times",
	Long: `Display a dashboard of your chat usage on this machine: turn counts,
success rate, time to first event, tokens, and the tools the agent used most.

Data is collected automatically and stored locally in ~/.workairs/stats.json.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := stats.Summarize()
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		if outputFormat != ui.FormatTable {
			return printResult(summary, nil)
		}

		cyan := color.New(color.FgCyan, color.Bold)
		green := color.New(color.FgGreen)
		yellow := color.New(color.FgYellow)
		dim := color.New(color.FgHiBlack)

		cyan.Fprintf(os.Stderr, "\n  wa stats\n\n")

		if summary.TotalTurns == 0 {
			dim.Fprintln(os.Stderr, "  No data yet. Chat for a while and come back.")
			fmt.Fprintln(os.Stderr)
			return nil
		}

		green.Fprintf(os.Stderr, "  Turns:       ")
		fmt.Fprintf(os.Stderr, "%d total", summary.TotalTurns)
		dim.Fprintf(os.Stderr, "  (%d today, %d this week)\n", summary.TodayCount, summary.ThisWeekCount)

		green.Fprintf(os.Stderr, "  Success:     ")
		if summary.SuccessRate >= 90 {
			fmt.Fprintf(os.Stderr, "%.0f%%\n", summary.SuccessRate)
		} else {
			yellow.Fprintf(os.Stderr, "%.0f%%\n", summary.SuccessRate)
		}

		if summary.AvgFirstEventMs > 0 {
			green.Fprintf(os.Stderr, "  First event: ")
			fmt.Fprintf(os.Stderr, "%dms avg\n", summary.AvgFirstEventMs)
		}
		green.Fprintf(os.Stderr, "  Full reply:  ")
		fmt.Fprintf(os.Stderr, "%dms avg\n", summary.AvgTotalMs)
		green.Fprintf(os.Stderr, "  Tokens:      ")
		fmt.Fprintf(os.Stderr, "%d\n", summary.TotalTokens)
		if summary.DroppedRecords > 0 {
			yellow.Fprintf(os.Stderr, "  Dropped:     %d malformed stream records\n", summary.DroppedRecords)
		}

		printBreakdown("Outcomes", summary.Outcomes, summary.TotalTurns)
		printBreakdown("Models", summary.Models, summary.TotalTurns)

		if len(summary.TopTools) > 0 {
			fmt.Fprintln(os.Stderr)
			cyan.Fprintln(os.Stderr, "  Top Tools")
			for i, tc := range summary.TopTools {
				dim.Fprintf(os.Stderr, "  %d. ", i+1)
				fmt.Fprintf(os.Stderr, "%s ", ui.Truncate(tc.Tool, 50))
				dim.Fprintf(os.Stderr, "(%dx)\n", tc.Count)
			}
		}

		fmt.Fprintln(os.Stderr)
		return nil
	},
}

func printBreakdown(title string, counts map[string]int, total int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	dim := color.New(color.FgHiBlack)
	fmt.Fprintln(os.Stderr)
	color.New(color.FgCyan, color.Bold).Fprintf(os.Stderr, "  %s\n", title)
	for _, k := range keys {
		pct := float64(counts[k]) / float64(total) * 100
		bar := strings.Repeat("█", int(pct/5))
		dim.Fprintf(os.Stderr, "  %-12s ", k)
		fmt.Fprintf(os.Stderr, "%s %d (%.0f%%)\n", bar, counts[k], pct)
	}
}
