package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/config"
	"github.com/workairs/wa-cli/internal/ui"
)

var (
	apiURLFlag   string
	tokenFlag    string
	outputFormat string
	verbose      bool
)

// cfg is the effective configuration after env and flag overrides.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "wa",
	Short: "Workairs from the terminal",
	Long: `wa is a command-line client for Workairs: chat with the sales agent,
and manage leads, campaigns, prompts and mailbox credentials.

Examples:
  wa chat "which leads need attention?"
  wa chat --resume
  wa leads list --search acme
  wa leads upload contacts.csv
  wa campaigns activate 12`,
	PersistentPreRunE:          setup,
	SilenceUsage:               true,
	SilenceErrors:              true,
	TraverseChildren:           true,
	SuggestionsMinimumDistance: 1,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&apiURLFlag, "api-url", "", "Workairs API base URL (overrides config and WORKAIRS_API_URL)")
	pf.StringVar(&tokenFlag, "token", "", "API token (overrides config and WORKAIRS_TOKEN)")
	pf.StringVarP(&outputFormat, "output", "o", ui.FormatTable, "Output format: "+strings.Join(ui.Formats, "|"))
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log requests and stream diagnostics to stderr")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(campaignsCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(credentialsCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(onboardingCmd)
	rootCmd.AddCommand(configCmd)
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the entry point called from main.
func Execute() error {
	err := rootCmd.Execute()
	if errors.Is(err, api.ErrUnauthorized) && tokenFlag == "" {
		if clearErr := config.ClearToken(); clearErr != nil {
			logrus.WithError(clearErr).Warn("failed to clear stored token")
		}
		color.New(color.FgYellow).Fprintln(os.Stderr, "  Session expired. Run 'wa auth login' to sign in again.")
	}
	return err
}

func setup(cmd *cobra.Command, args []string) error {
	setupLogging()

	if !slices.Contains(ui.Formats, outputFormat) {
		return fmt.Errorf("unknown output format %q (want one of %s)", outputFormat, strings.Join(ui.Formats, ", "))
	}

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if apiURLFlag != "" {
		loaded.APIURL = strings.TrimRight(apiURLFlag, "/")
	}
	if tokenFlag != "" {
		loaded.Token = tokenFlag
	}
	cfg = loaded
	return nil
}

func setupLogging() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !verbose,
		FullTimestamp:    true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// newClient builds an API client from the effective configuration.
func newClient() (*api.Client, error) {
	client, err := api.NewClient(cfg, api.WithLogger(logrus.WithField("component", "api")))
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return client, nil
}

// requireLogin builds a client and fails early when no token is configured.
func requireLogin() (*api.Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("not logged in: run 'wa auth login' or set WORKAIRS_TOKEN")
	}
	return newClient()
}
