package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/imryche/litequery/internal/logger"
)

var migrateWatch bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Applies every migration in the migrations directory that is not yet
recorded in the migrations table, in numeric order, each in its own
transaction. After applying at least one migration, schema.sql is rewritten
next to the database.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateStatus,
}

func init() {
	migrateCmd.Flags().BoolVarP(&migrateWatch, "watch", "w", false, "re-run when migration files change")
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migrateWatch {
		ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
		defer stop()
		if logger.GetLevel() > logger.LevelInfo {
			logger.SetLevel(logger.LevelInfo)
		}
		cmd.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", services.Config.MigrationsPath)
		return services.Migrator.Watch(ctx)
	}

	applied, err := services.Migrator.Migrate(contextOf(cmd))
	if len(applied) > 0 {
		cmd.Println("Applying migrations:")
		for _, name := range applied {
			cmd.Printf("- %s\n", name)
		}
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		cmd.Println("Nothing to apply.")
	}
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	migrations, err := services.Migrator.Status(contextOf(cmd))
	if err != nil {
		return err
	}
	if len(migrations) == 0 {
		cmd.Printf("No migrations in %s\n", services.Config.MigrationsPath)
		return nil
	}

	rows := make([][]string, 0, len(migrations))
	pending := 0
	for _, m := range migrations {
		applied := "pending"
		if m.IsApplied() {
			applied = formatValue(m.AppliedAt)
		} else {
			pending++
		}
		rows = append(rows, []string{m.Filename, applied})
	}
	if err := renderTable(cmd.OutOrStdout(), []string{"Migration", "Applied at"}, rows); err != nil {
		return err
	}
	cmd.Printf("%d applied, %d pending\n", len(migrations)-pending, pending)
	return nil
}

// contextOf returns the command context, or Background when run directly.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
