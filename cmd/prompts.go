package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/ui"
)

var prompts = resource[api.Prompt]{
	singular: "prompt",
	plural:   "prompts",
	list: func(ctx context.Context, c *api.Client, search, ordering string) (*api.Page[api.Prompt], error) {
		return c.Prompts.List(ctx, search, ordering)
	},
	get: func(ctx context.Context, c *api.Client, id int64) (*api.Prompt, error) {
		return c.Prompts.Get(ctx, id)
	},
	create: func(ctx context.Context, c *api.Client, f api.Fields) (*api.Prompt, error) {
		return c.Prompts.Create(ctx, f)
	},
	update: func(ctx context.Context, c *api.Client, id int64, f api.Fields) (*api.Prompt, error) {
		return c.Prompts.Update(ctx, id, f)
	},
	patch: func(ctx context.Context, c *api.Client, id int64, f api.Fields) (*api.Prompt, error) {
		return c.Prompts.Patch(ctx, id, f)
	},
	remove: func(ctx context.Context, c *api.Client, id int64) error {
		return c.Prompts.Delete(ctx, id)
	},
	header: []string{"ID", "CAMPAIGN", "PHASE", "STEP", "DELAY (H)", "PURPOSE"},
	row: func(p api.Prompt) []string {
		return []string{
			strconv.FormatInt(p.ID, 10),
			p.CampaignName,
			p.SequencePhase,
			strconv.Itoa(p.SequenceStep),
			strconv.FormatFloat(p.DelayHours, 'f', -1, 64),
			ui.Truncate(p.Purpose, 50),
		}
	},
}

var (
	promptsSearch   string
	promptsOrdering string
)

var promptsCmd = &cobra.Command{
	Use:     "prompts",
	Aliases: []string{"prompt"},
	Short:   "Manage the email prompts of campaign sequences",
}

var promptsByCampaignCmd = &cobra.Command{
	Use:   "by-campaign <campaign-id>",
	Short: "List the prompts of one campaign",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *api.Client, id int64) error {
		list, err := c.Prompts.ByCampaign(ctx, id, promptsSearch, promptsOrdering)
		if err != nil {
			return fmt.Errorf("failed to list prompts: %w", err)
		}
		return printResult(list, prompts.table(list...))
	}),
}

func init() {
	promptsByCampaignCmd.Flags().StringVarP(&promptsSearch, "search", "s", "", "Free-text search")
	promptsByCampaignCmd.Flags().StringVar(&promptsOrdering, "ordering", "", "Sort field, prefix with - for descending")

	promptsCmd.AddCommand(prompts.commands()...)
	promptsCmd.AddCommand(promptsByCampaignCmd)
}
