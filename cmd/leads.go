package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/ui"
)

var leads = resource[api.Lead]{
	singular: "lead",
	plural:   "leads",
	list: func(ctx context.Context, c *api.Client, search, ordering string) (*api.Page[api.Lead], error) {
		return c.Leads.List(ctx, search, ordering)
	},
	get: func(ctx context.Context, c *api.Client, id int64) (*api.Lead, error) {
		return c.Leads.Get(ctx, id)
	},
	create: func(ctx context.Context, c *api.Client, f api.Fields) (*api.Lead, error) {
		return c.Leads.Create(ctx, f)
	},
	update: func(ctx context.Context, c *api.Client, id int64, f api.Fields) (*api.Lead, error) {
		return c.Leads.Update(ctx, id, f)
	},
	patch: func(ctx context.Context, c *api.Client, id int64, f api.Fields) (*api.Lead, error) {
		return c.Leads.Patch(ctx, id, f)
	},
	remove: func(ctx context.Context, c *api.Client, id int64) error {
		return c.Leads.Delete(ctx, id)
	},
	header: []string{"ID", "COMPANY", "CONTACT", "EMAIL", "CAMPAIGN", "STATUS"},
	row: func(l api.Lead) []string {
		return []string{
			strconv.FormatInt(l.ID, 10),
			ui.Truncate(ui.Deref(l.CompanyName), 30),
			ui.Deref(l.ContactFullName),
			ui.Deref(l.ContactEmail),
			l.CampaignName,
			l.Status,
		}
	},
}

var (
	unlockAction       string
	unlockEventID      string
	unlockInstructions string
	unlockCampaign     int64
	statsSearch        string
	statsOrdering      string
)

var leadsCmd = &cobra.Command{
	Use:     "leads",
	Aliases: []string{"lead"},
	Short:   "Manage leads",
}

var leadsUploadCmd = &cobra.Command{
	Use:   "upload <file.csv|file.xlsx>",
	Short: "Bulk import leads from a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".xlsx", ".xls":
		default:
			return fmt.Errorf("unsupported file type %q: use .csv or .xlsx", filepath.Ext(path))
		}

		client, err := requireLogin()
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		sp := ui.NewSpinner("Uploading " + filepath.Base(path) + "...")
		sp.Start()
		res, err := client.Leads.Upload(cmd.Context(), api.File{Name: filepath.Base(path), Content: f})
		if err != nil {
			sp.Fail("Upload failed")
			return err
		}
		sp.Success(fmt.Sprintf("Created %d, skipped %d", res.Created, res.Skipped))

		tab := ui.Table{Columns: []string{"ROW", "ERROR"}}
		for _, e := range res.Errors {
			tab.Data = append(tab.Data, []string{strconv.Itoa(e.Row), e.Error})
		}
		if outputFormat == ui.FormatTable && len(res.Errors) == 0 {
			return nil
		}
		return printResult(res, tab)
	},
}

var leadsMarkRespondedCmd = &cobra.Command{
	Use:   "mark-responded <id>",
	Short: "Record that a lead has replied",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *api.Client, id int64) error {
		l, err := c.Leads.MarkResponded(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to mark lead: %w", err)
		}
		return leads.printOne(l)
	}),
}

var leadsStatusCmd = &cobra.Command{
	Use:       "status <id> <status>",
	Short:     "Change the status of a lead",
	Long:      "Change the status of a lead. Valid statuses: " + strings.Join(api.LeadStatuses, ", "),
	Args:      cobra.ExactArgs(2),
	ValidArgs: api.LeadStatuses,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status := args[1]
		if !slices.Contains(api.LeadStatuses, status) {
			return fmt.Errorf("invalid status %q (valid: %s)", status, strings.Join(api.LeadStatuses, ", "))
		}
		client, err := requireLogin()
		if err != nil {
			return err
		}
		l, err := client.Leads.UpdateStatus(cmd.Context(), id, status)
		if err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		return leads.printOne(l)
	},
}

var leadsUnlockCmd = &cobra.Command{
	Use:   "unlock <id>",
	Short: "Resolve a lead that needs attention",
	Long: `Resolve a lead waiting on your instructions.

Actions:
  send_draft          send the drafted email as is
  apply_instructions  redraft following --instructions
  close_contact       stop contacting this lead`,
	Args: cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *api.Client, id int64) error {
		if !slices.Contains(api.UnlockActions, unlockAction) {
			return fmt.Errorf("invalid --action %q (valid: %s)", unlockAction, strings.Join(api.UnlockActions, ", "))
		}
		if unlockAction == api.UnlockApplyInstructions && strings.TrimSpace(unlockInstructions) == "" {
			return errors.New("--instructions is required with apply_instructions")
		}
		l, err := c.Leads.Unlock(ctx, id, api.UnlockRequest{
			UnlockAction:     unlockAction,
			UnlockEventID:    unlockEventID,
			LastInstructions: unlockInstructions,
			CampaignID:       unlockCampaign,
		})
		if err != nil {
			return fmt.Errorf("failed to unlock lead: %w", err)
		}
		color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ Lead %d unlocked (%s)\n", id, unlockAction)
		return leads.printOne(l)
	}),
}

var leadsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lead counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireLogin()
		if err != nil {
			return err
		}
		stats, err := client.Leads.Stats(cmd.Context(), statsSearch, statsOrdering)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}

		keys := make([]string, 0, len(stats))
		for k := range stats {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		tab := ui.Table{Columns: []string{"METRIC", "VALUE"}}
		for _, k := range keys {
			tab.Data = append(tab.Data, []string{k, fmt.Sprint(stats[k])})
		}
		return printResult(stats, tab)
	},
}

func init() {
	leadsUnlockCmd.Flags().StringVar(&unlockAction, "action", "", "One of: "+strings.Join(api.UnlockActions, ", "))
	leadsUnlockCmd.Flags().StringVar(&unlockEventID, "event-id", "", "Unlock event id from the attention record")
	leadsUnlockCmd.Flags().StringVar(&unlockInstructions, "instructions", "", "Instructions for apply_instructions")
	leadsUnlockCmd.Flags().Int64Var(&unlockCampaign, "campaign", 0, "Campaign the attention record belongs to")
	_ = leadsUnlockCmd.MarkFlagRequired("action")
	_ = leadsUnlockCmd.MarkFlagRequired("event-id")

	leadsStatsCmd.Flags().StringVarP(&statsSearch, "search", "s", "", "Only count leads matching this search")
	leadsStatsCmd.Flags().StringVar(&statsOrdering, "ordering", "", "Ordering passed through to the backend")

	leadsCmd.AddCommand(leads.commands()...)
	leadsCmd.AddCommand(leadsUploadCmd)
	leadsCmd.AddCommand(leadsMarkRespondedCmd)
	leadsCmd.AddCommand(leadsStatusCmd)
	leadsCmd.AddCommand(leadsUnlockCmd)
	leadsCmd.AddCommand(leadsStatsCmd)
}
