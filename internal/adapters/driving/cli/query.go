package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imryche/litequery/internal/core/domain"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query <name> [key=value ...]",
	Short: "Run a named query",
	Long: `Runs a parsed query by name. Arguments are passed as key=value pairs.
Values that look like integers or floats are bound as numbers and "null" as
NULL; wrap a value in quotes to bind it as text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	eng, err := engine()
	if err != nil {
		return err
	}
	callArgs, err := parseArgs(args[1:])
	if err != nil {
		return err
	}

	result, err := eng.Call(contextOf(cmd), args[0], callArgs)
	if err != nil {
		return err
	}
	return printResult(cmd, result)
}

func printResult(cmd *cobra.Command, result domain.Result) error {
	out := cmd.OutOrStdout()

	if queryJSON {
		switch result.Op {
		case domain.OpFetchAll:
			rows := make([]map[string]any, 0, result.Rows.Len())
			for _, row := range result.Rows {
				rows = append(rows, jsonRow(row))
			}
			return writeJSON(out, rows)
		case domain.OpFetchOne:
			return writeJSON(out, jsonRow(result.Row))
		case domain.OpFetchScalar:
			return writeJSON(out, jsonValue(result.Value))
		default:
			return writeJSON(out, result.Any())
		}
	}

	switch result.Op {
	case domain.OpFetchAll:
		if result.Rows.Len() == 0 {
			cmd.Println(styles.Muted.Render("(no rows)"))
			return nil
		}
		headers, rows := rowsTable(result.Rows)
		return renderTable(out, headers, rows)
	case domain.OpFetchOne:
		headers, rows := rowsTable(domain.RowSet{result.Row})
		return renderTable(out, headers, rows)
	case domain.OpFetchScalar:
		cmd.Println(formatValue(result.Value))
	case domain.OpMutate:
		cmd.Printf("%d rows affected\n", result.RowsAffected)
	case domain.OpMutateReturningID:
		cmd.Printf("Last insert id: %d\n", result.LastInsertID)
	}
	return nil
}

// parseArgs converts key=value pairs into named arguments.
func parseArgs(pairs []string) (domain.Args, error) {
	args := make(domain.Args, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, want key=value", pair)
		}
		if _, dup := args[key]; dup {
			return nil, fmt.Errorf("argument %q given twice", key)
		}
		args[key] = parseValue(value)
	}
	return args, nil
}

func parseValue(s string) any {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	if s == "null" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return s
}
