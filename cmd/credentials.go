package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/ui"
)

var oauthProviders = []string{"microsoft"}

var connectState string

var credentialsCmd = &cobra.Command{
	Use:     "credentials",
	Aliases: []string{"mailboxes"},
	Short:   "Manage connected mailboxes",
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected mailboxes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireLogin()
		if err != nil {
			return err
		}
		creds, err := client.Credentials.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list credentials: %w", err)
		}
		tab := ui.Table{Columns: []string{"ID", "PROVIDER", "EMAIL", "STATUS", "CONNECTED"}}
		for _, c := range creds {
			tab.Data = append(tab.Data, []string{
				strconv.FormatInt(c.ID, 10), c.Provider, c.Email, c.Status, c.CreatedAt,
			})
		}
		return printResult(creds, tab)
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Disconnect a mailbox",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *api.Client, id int64) error {
		if err := c.Credentials.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete credential: %w", err)
		}
		color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ Disconnected mailbox %d\n", id)
		return nil
	}),
}

var credentialsConnectCmd = &cobra.Command{
	Use:       "connect [provider]",
	Short:     "Print the link that connects a mailbox",
	Long:      "Print the OAuth link that connects a mailbox. Providers: " + strings.Join(oauthProviders, ", "),
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: oauthProviders,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := oauthProviders[0]
		if len(args) == 1 {
			provider = strings.ToLower(args[0])
		}
		if !slices.Contains(oauthProviders, provider) {
			return fmt.Errorf("unknown provider %q (valid: %s)", provider, strings.Join(oauthProviders, ", "))
		}
		client, err := newClient()
		if err != nil {
			return err
		}

		state := connectState
		if state == "" {
			state = uuid.NewString()
		}

		dim := color.New(color.FgHiBlack)
		dim.Fprintln(os.Stderr, "  Open this link in your browser and approve access:")
		fmt.Println(client.Credentials.OAuthURL(provider, state))
		dim.Fprintln(os.Stderr, "  Then pass the address you are redirected to to 'wa credentials callback'.")
		return nil
	},
}

var credentialsCallbackCmd = &cobra.Command{
	Use:   "callback <redirect-url|fragment>",
	Short: "Finish connecting a mailbox",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireLogin()
		if err != nil {
			return err
		}
		res, err := client.Credentials.Callback(cmd.Context(), fragmentOf(args[0]))
		if err != nil {
			return fmt.Errorf("failed to complete connection: %w", err)
		}
		color.New(color.FgGreen).Fprintln(os.Stderr, "  ✓ Mailbox connected")
		if outputFormat == ui.FormatTable {
			return nil
		}
		return printResult(res, nil)
	},
}

// fragmentOf returns the part after '#' of a redirect URL, or s itself.
func fragmentOf(s string) string {
	if _, frag, ok := strings.Cut(s, "#"); ok {
		return frag
	}
	return s
}

func init() {
	credentialsConnectCmd.Flags().StringVar(&connectState, "state", "", "OAuth state value (random when empty)")

	credentialsCmd.AddCommand(credentialsListCmd)
	credentialsCmd.AddCommand(credentialsDeleteCmd)
	credentialsCmd.AddCommand(credentialsConnectCmd)
	credentialsCmd.AddCommand(credentialsCallbackCmd)
}
