package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/ui"
)

// resource describes a REST collection with the standard list, get,
// create, update, patch and delete endpoints.
type resource[T any] struct {
	singular string
	plural   string

	list   func(ctx context.Context, c *api.Client, search, ordering string) (*api.Page[T], error)
	get    func(ctx context.Context, c *api.Client, id int64) (*T, error)
	create func(ctx context.Context, c *api.Client, f api.Fields) (*T, error)
	update func(ctx context.Context, c *api.Client, id int64, f api.Fields) (*T, error)
	patch  func(ctx context.Context, c *api.Client, id int64, f api.Fields) (*T, error)
	remove func(ctx context.Context, c *api.Client, id int64) error

	header []string
	row    func(T) []string
}

func (r resource[T]) table(items ...T) ui.Table {
	tab := ui.Table{Columns: r.header}
	for _, it := range items {
		tab.Data = append(tab.Data, r.row(it))
	}
	return tab
}

func (r resource[T]) printOne(v *T) error {
	return printResult(v, r.table(*v))
}

// commands returns the CRUD subcommands for r.
func (r resource[T]) commands() []*cobra.Command {
	var search, ordering string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + r.plural,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := requireLogin()
			if err != nil {
				return err
			}
			page, err := r.list(cmd.Context(), client, search, ordering)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", r.plural, err)
			}
			if err := printResult(page, r.table(page.Results...)); err != nil {
				return err
			}
			if outputFormat == ui.FormatTable && page.Count > len(page.Results) {
				color.New(color.FgHiBlack).Fprintf(os.Stderr, "  Showing %d of %d.\n", len(page.Results), page.Count)
			}
			return nil
		},
	}
	listCmd.Flags().StringVarP(&search, "search", "s", "", "Free-text search")
	listCmd.Flags().StringVar(&ordering, "ordering", "", "Sort field, prefix with - for descending")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one " + r.singular,
		Args:  cobra.ExactArgs(1),
		RunE: withID(func(ctx context.Context, c *api.Client, id int64) error {
			v, err := r.get(ctx, c, id)
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", r.singular, err)
			}
			return r.printOne(v)
		}),
	}

	var createData string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + r.singular + " from --data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseData(createData)
			if err != nil {
				return err
			}
			client, err := requireLogin()
			if err != nil {
				return err
			}
			v, err := r.create(cmd.Context(), client, fields)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", r.singular, err)
			}
			return r.printOne(v)
		},
	}
	createCmd.Flags().StringVarP(&createData, "data", "d", "", "JSON or YAML payload, or @file")

	updateCmd, updateData := r.writeCommand("update", "Replace a "+r.singular+" with --data", r.update)
	patchCmd, patchData := r.writeCommand("patch", "Change selected fields of a "+r.singular, r.patch)
	updateCmd.Flags().StringVarP(updateData, "data", "d", "", "JSON or YAML payload, or @file")
	patchCmd.Flags().StringVarP(patchData, "data", "d", "", "JSON or YAML payload, or @file")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + r.singular,
		Args:  cobra.ExactArgs(1),
		RunE: withID(func(ctx context.Context, c *api.Client, id int64) error {
			if err := r.remove(ctx, c, id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", r.singular, err)
			}
			color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ Deleted %s %d\n", r.singular, id)
			return nil
		}),
	}

	return []*cobra.Command{listCmd, getCmd, createCmd, updateCmd, patchCmd, deleteCmd}
}

func (r resource[T]) writeCommand(use, short string, fn func(context.Context, *api.Client, int64, api.Fields) (*T, error)) (*cobra.Command, *string) {
	data := new(string)
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fields, err := parseData(*data)
			if err != nil {
				return err
			}
			client, err := requireLogin()
			if err != nil {
				return err
			}
			v, err := fn(cmd.Context(), client, id, fields)
			if err != nil {
				return fmt.Errorf("failed to %s %s: %w", use, r.singular, err)
			}
			return r.printOne(v)
		},
	}
	return cmd, data
}

// withID adapts fn to a RunE that parses the first argument as an id.
func withID(fn func(ctx context.Context, c *api.Client, id int64) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client, err := requireLogin()
		if err != nil {
			return err
		}
		return fn(cmd.Context(), client, id)
	}
}
