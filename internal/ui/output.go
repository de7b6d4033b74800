package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatTable, FormatJSON, FormatYAML}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Tabular is implemented by values that know how to lay themselves out as
// table rows.
type Tabular interface {
	Header() []string
	Rows() [][]string
}

// Table is a ready-made Tabular.
type Table struct {
	Columns []string
	Data    [][]string
}

func (t Table) Header() []string { return t.Columns }
func (t Table) Rows() [][]string { return t.Data }

// Print writes v in the requested format. For the table format tab supplies
// the rows; a nil tab falls back to json. The empty format means table.
func Print(w io.Writer, format string, v any, tab Tabular) error {
	switch format {
	case FormatTable, "":
		if tab == nil {
			return printJSON(w, v)
		}
		return printTable(w, tab)
	case FormatJSON:
		return printJSON(w, v)
	case FormatYAML:
		return printYAML(w, v)
	default:
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printYAML round-trips through JSON so field names follow the json tags.
func printYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func printTable(w io.Writer, tab Tabular) error {
	rows := tab.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(tab.Header()...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// Markdown renders text for a terminal when stdout is one and returns it
// unchanged otherwise.
func Markdown(text string) string {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return text
	}
	width := 100
	if w, _, err := term.GetSize(fd); err == nil && w > 8 {
		width = w - 4
	}
	return renderMarkdown(text, width)
}

func renderMarkdown(text string, width int) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// Deref formats an optional value for a table cell.
func Deref[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

// Truncate shortens s to n runes for a table cell.
func Truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
