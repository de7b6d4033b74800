package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/api"
)

var campaigns = resource[api.Campaign]{
	singular: "campaign",
	plural:   "campaigns",
	list: func(ctx context.Context, c *api.Client, search, ordering string) (*api.Page[api.Campaign], error) {
		return c.Campaigns.List(ctx, search, ordering)
	},
	get: func(ctx context.Context, c *api.Client, id int64) (*api.Campaign, error) {
		return c.Campaigns.Get(ctx, id)
	},
	create: func(ctx context.Context, c *api.Client, f api.Fields) (*api.Campaign, error) {
		return c.Campaigns.Create(ctx, f)
	},
	update: func(ctx context.Context, c *api.Client, id int64, f api.Fields) (*api.Campaign, error) {
		return c.Campaigns.Update(ctx, id, f)
	},
	patch: func(ctx context.Context, c *api.Client, id int64, f api.Fields) (*api.Campaign, error) {
		return c.Campaigns.Patch(ctx, id, f)
	},
	remove: func(ctx context.Context, c *api.Client, id int64) error {
		return c.Campaigns.Delete(ctx, id)
	},
	header: []string{"ID", "NAME", "STATUS", "LEADS", "REGION", "LANGUAGE"},
	row: func(c api.Campaign) []string {
		return []string{
			strconv.FormatInt(c.ID, 10),
			c.CampaignName,
			c.Status,
			strconv.Itoa(c.LeadsCount),
			c.Region,
			c.Language,
		}
	},
}

var campaignsCmd = &cobra.Command{
	Use:     "campaigns",
	Aliases: []string{"campaign"},
	Short:   "Manage outreach campaigns",
}

var campaignsActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Start sending for a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *api.Client, id int64) error {
		return setCampaignState(c.Campaigns.Activate(ctx, id))
	}),
}

var campaignsPauseCmd = &cobra.Command{
	Use:   "pause <id>",
	Short: "Stop sending for a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *api.Client, id int64) error {
		return setCampaignState(c.Campaigns.Pause(ctx, id))
	}),
}

func setCampaignState(c *api.Campaign, err error) error {
	if err != nil {
		return fmt.Errorf("failed to change campaign status: %w", err)
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ %s is now %s\n", c.CampaignName, c.Status)
	return campaigns.printOne(c)
}

func init() {
	campaignsCmd.AddCommand(campaigns.commands()...)
	campaignsCmd.AddCommand(campaignsActivateCmd)
	campaignsCmd.AddCommand(campaignsPauseCmd)
}
