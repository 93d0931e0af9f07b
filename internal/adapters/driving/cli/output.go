package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/imryche/litequery/internal/core/domain"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderTable writes a bordered table to terminals and tab-separated
// columns to anything else.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	if !isTerminal(w) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		return tw.Flush()
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		}).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// formatValue renders one column value for display.
func formatValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return domain.FormatTimestamp(tv)
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(tv))
	default:
		return fmt.Sprint(tv)
	}
}

// rowsTable converts a row set to table cells.
func rowsTable(set domain.RowSet) ([]string, [][]string) {
	headers := set.Columns()
	cells := make([][]string, 0, set.Len())
	for _, row := range set {
		line := make([]string, 0, row.Len())
		for _, v := range row.Values() {
			line = append(line, formatValue(v))
		}
		cells = append(cells, line)
	}
	return headers, cells
}

// jsonValue converts values that encoding/json would render poorly.
func jsonValue(v any) any {
	switch tv := v.(type) {
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

func jsonRow(row domain.Row) map[string]any {
	out := row.Map()
	for name, v := range out {
		out[name] = jsonValue(v)
	}
	return out
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
