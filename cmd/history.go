package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/history"
	"github.com/workairs/wa-cli/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent chat sessions on this machine",
	Long: `Show chat sessions started from this machine, most recent last.
Continue one with 'wa chat -c <id>', or the latest with 'wa chat --resume'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := history.Load(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		if outputFormat != ui.FormatTable {
			return printResult(entries, nil)
		}
		if len(entries) == 0 {
			fmt.Println("No history yet.")
			return nil
		}

		cyan := color.New(color.FgCyan)
		dim := color.New(color.FgHiBlack)
		red := color.New(color.FgRed)
		green := color.New(color.FgGreen)

		for i, e := range entries {
			dim.Printf("[%s] ", e.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Printf("%s ", e.Title)
			cyan.Printf("→ %s ", e.ConversationID)
			dim.Printf("(%s) ", plural(e.Turns, "turn"))
			if e.Failed {
				red.Println("✗")
			} else {
				green.Println("✓")
			}
			if e.LastReply != "" {
				dim.Printf("  %s\n", ui.Truncate(e.LastReply, 100))
			}
			if i < len(entries)-1 {
				fmt.Println()
			}
		}
		return nil
	},
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of sessions to show")
}
