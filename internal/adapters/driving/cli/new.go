package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create new project files",
}

var newMigrationCmd = &cobra.Command{
	Use:   "migration <name>",
	Short: "Create a new migration",
	Long: `Creates an empty migration file numbered after the highest existing
migration, e.g. "lq new migration add users table" creates
003_add_users_table.sql when 002 is the latest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNewMigration,
}

func init() {
	newCmd.AddCommand(newMigrationCmd)
	rootCmd.AddCommand(newCmd)
}

func runNewMigration(cmd *cobra.Command, args []string) error {
	path, err := services.Migrator.Create(strings.Join(args, " "))
	if err != nil {
		return err
	}
	cmd.Println(styles.Success.Render("Created " + path))
	return nil
}
