package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/ui"
)

var onboardingAnswers []string

var onboardingCmd = &cobra.Command{
	Use:   "onboarding",
	Short: "Answer the account setup questions",
}

var onboardingStepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the onboarding questions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireLogin()
		if err != nil {
			return err
		}
		steps, err := client.Onboarding.Steps(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load onboarding steps: %w", err)
		}
		tab := ui.Table{Columns: []string{"ID", "TITLE", "TYPE", "REQUIRED", "OPTIONS"}}
		for _, s := range steps {
			opts := make([]string, len(s.Options))
			for i, o := range s.Options {
				opts[i] = o.Value
			}
			tab.Data = append(tab.Data, []string{
				strconv.FormatInt(s.ID, 10),
				s.Title,
				s.Type,
				strconv.FormatBool(s.Required),
				strings.Join(opts, ", "),
			})
		}
		return printResult(steps, tab)
	},
}

var onboardingCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Submit onboarding answers",
	Long: `Submit onboarding answers. Pass them with --answer <step-id>=<value>,
or leave them out to be asked each question in turn.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireLogin()
		if err != nil {
			return err
		}

		responses, err := parseAnswers(onboardingAnswers)
		if err != nil {
			return err
		}
		if len(responses) == 0 {
			steps, err := client.Onboarding.Steps(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load onboarding steps: %w", err)
			}
			if responses, err = askSteps(steps); err != nil {
				return err
			}
		}

		res, err := client.Onboarding.Complete(cmd.Context(), responses)
		if err != nil {
			return fmt.Errorf("failed to complete onboarding: %w", err)
		}
		msg := res.Message
		if msg == "" {
			msg = "Onboarding complete"
		}
		if !res.Success {
			return fmt.Errorf("onboarding not accepted: %s", msg)
		}
		color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ %s\n", msg)
		return nil
	},
}

// parseAnswers turns "id=value" pairs into step responses.
func parseAnswers(pairs []string) ([]api.StepResponse, error) {
	var out []api.StepResponse
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid answer %q: want <step-id>=<value>", p)
		}
		id, err := parseID(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("invalid answer %q: %w", p, err)
		}
		out = append(out, api.StepResponse{StepID: id, Value: strings.TrimSpace(v)})
	}
	return out, nil
}

func askSteps(steps []api.OnboardingStep) ([]api.StepResponse, error) {
	dim := color.New(color.FgHiBlack)
	var out []api.StepResponse
	for _, s := range steps {
		fmt.Fprintln(os.Stderr)
		color.New(color.FgCyan, color.Bold).Fprintf(os.Stderr, "  %s\n", s.Title)
		if s.Description != "" {
			dim.Fprintf(os.Stderr, "  %s\n", s.Description)
		}
		for _, o := range s.Options {
			dim.Fprintf(os.Stderr, "    %s  %s\n", o.Value, o.Label)
		}

		for {
			v, err := prompt("Answer")
			if err != nil {
				return nil, err
			}
			if v == "" && s.Required {
				dim.Fprintln(os.Stderr, "  This question is required.")
				continue
			}
			if v != "" {
				out = append(out, api.StepResponse{StepID: s.ID, Value: v})
			}
			break
		}
	}
	return out, nil
}

func init() {
	onboardingCompleteCmd.Flags().StringArrayVarP(&onboardingAnswers, "answer", "a", nil, "Answer as <step-id>=<value> (repeatable)")

	onboardingCmd.AddCommand(onboardingStepsCmd)
	onboardingCmd.AddCommand(onboardingCompleteCmd)
}
