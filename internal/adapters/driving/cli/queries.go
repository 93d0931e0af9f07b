package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List the parsed queries",
	Args:  cobra.NoArgs,
	RunE:  runQueries,
}

func init() {
	rootCmd.AddCommand(queriesCmd)
}

func runQueries(cmd *cobra.Command, _ []string) error {
	eng, err := engine()
	if err != nil {
		return err
	}

	queries := eng.Queries()
	if len(queries) == 0 {
		cmd.Printf("No queries in %s\n", services.Config.QueriesPath)
		return nil
	}

	rows := make([][]string, 0, len(queries))
	for _, q := range queries {
		rows = append(rows, []string{q.Header(), q.Op.Description(), strings.Join(q.Args, ", "), q.Source})
	}
	return renderTable(cmd.OutOrStdout(), []string{"Name", "Returns", "Arguments", "Source"}, rows)
}
