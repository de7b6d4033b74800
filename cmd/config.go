package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage wa configuration",
}

var setURLCmd = &cobra.Command{
	Use:   "set-url <api-url>",
	Short: "Set the Workairs API base URL (default: " + config.DefaultAPIURL + ")",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := url.Parse(args[0])
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid url %q: scheme and host are required", args[0])
		}
		if err := config.SetAPIURL(args[0]); err != nil {
			return fmt.Errorf("failed to save API URL: %w", err)
		}
		fmt.Printf("API URL set to %s.\n", args[0])
		return nil
	},
}

var setTokenCmd = &cobra.Command{
	Use:   "set-token <token>",
	Short: "Store an API token directly instead of logging in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetToken(args[0]); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		fmt.Println("Token saved successfully.")
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("API URL:     %s\n", cfg.APIURL)
		fmt.Printf("Token:       %s\n", cfg.MaskedToken())
		fmt.Printf("Auth scheme: %s\n", cfg.AuthScheme)
		fmt.Printf("Config Dir:  %s\n", config.Dir())
		return nil
	},
}

func init() {
	configCmd.AddCommand(setURLCmd)
	configCmd.AddCommand(setTokenCmd)
	configCmd.AddCommand(showCmd)
}
