package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/history"
	"github.com/workairs/wa-cli/internal/ui"
)

var (
	chatsArchived bool
	chatsLimit    int
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List, show and delete stored conversations",
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations stored on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireLogin()
		if err != nil {
			return err
		}

		opts := api.ListOptions{}
		if cmd.Flags().Changed("archived") {
			opts.Archived = &chatsArchived
		}
		if chatsLimit > 0 {
			opts.Limit = &chatsLimit
		}

		convs, err := client.Conversations.List(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("failed to list conversations: %w", err)
		}

		tab := ui.Table{Columns: []string{"ID", "TITLE", "MESSAGES", "UPDATED", "ARCHIVED"}}
		for _, c := range convs {
			tab.Data = append(tab.Data, []string{
				c.ID,
				ui.Truncate(c.Title, 40),
				strconv.Itoa(c.MessageCount),
				c.UpdatedAt,
				strconv.FormatBool(c.IsArchived),
			})
		}
		return printResult(convs, tab)
	},
}

var chatsShowCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Print the messages of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireLogin()
		if err != nil {
			return err
		}

		msgs, err := client.Conversations.History(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load conversation: %w", err)
		}
		if outputFormat != ui.FormatTable {
			return printResult(msgs, nil)
		}
		if len(msgs) == 0 {
			fmt.Println("No messages.")
			return nil
		}

		green := color.New(color.FgGreen, color.Bold)
		cyan := color.New(color.FgCyan, color.Bold)
		dim := color.New(color.FgHiBlack)

		for _, m := range msgs {
			switch m.Role {
			case "user":
				green.Print("you")
			default:
				cyan.Print("wa")
			}
			dim.Printf("  %s", m.CreatedAt)
			if m.Metadata != nil && m.Metadata.FunctionName != "" {
				dim.Printf("  ⚙ %s", m.Metadata.FunctionName)
			}
			fmt.Println()
			fmt.Println(ui.Markdown(m.Content))
		}
		return nil
	},
}

var chatsDeleteCmd = &cobra.Command{
	Use:   "delete <conversation-id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireLogin()
		if err != nil {
			return err
		}
		if err := client.Conversations.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		if err := history.Remove(args[0]); err != nil {
			logrus.WithError(err).Warn("failed to update local history")
		}
		color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ Deleted conversation %s\n", args[0])
		return nil
	},
}

func init() {
	chatsListCmd.Flags().BoolVar(&chatsArchived, "archived", false, "Only archived (true) or active (false) conversations")
	chatsListCmd.Flags().IntVarP(&chatsLimit, "limit", "n", 0, "Maximum number of conversations")

	chatsCmd.AddCommand(chatsListCmd)
	chatsCmd.AddCommand(chatsShowCmd)
	chatsCmd.AddCommand(chatsDeleteCmd)
}
