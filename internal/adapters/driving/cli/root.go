// Package cli implements the lq command line interface with cobra.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imryche/litequery/internal/core/domain"
	"github.com/imryche/litequery/internal/core/ports/driving"
	"github.com/imryche/litequery/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// skipSetup marks commands that run without a database.
const skipSetup = "skip-setup"

// Services holds what commands run against.
type Services struct {
	Config   domain.Config
	Migrator driving.Migrator

	// Engine parses the queries and builds an engine on first use, so
	// commands that do not run queries are not affected by query errors.
	Engine func() (driving.Engine, error)

	// Close releases the database.
	Close func() error
}

// BootstrapOptions are the global flag values passed to the bootstrap.
type BootstrapOptions struct {
	DatabasePath string
	ConfigPath   string
	Verbose      bool
}

// Bootstrap resolves configuration and wires services.
type Bootstrap func(opts BootstrapOptions) (*Services, error)

// Initializer writes a new config file and returns its path.
type Initializer func(configPath, databasePath string) (string, error)

var (
	bootstrap   Bootstrap
	initializer Initializer
	services    *Services

	databasePath string
	configPath   string
	verbose      bool
)

// SetBootstrap sets the function that wires services before a command runs.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetInitializer sets the function behind "lq init".
func SetInitializer(fn Initializer) {
	initializer = fn
}

var rootCmd = &cobra.Command{
	Use:   "lq",
	Short: "Annotated SQL queries and migrations for SQLite",
	Long: `lq manages a SQLite database for litequery projects.

Queries live in .sql files as "-- name: <name><suffix>" blocks, where the
suffix selects the result: none for all rows, ^ for one row, $ for a scalar,
! for the affected row count and <! for the last inserted id. Migrations
are numbered .sql files applied in order and recorded in a ledger table.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&databasePath, "database", "d", "",
		"database file (default from litequery.toml or $DATABASE_PATH)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./litequery.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func setup(cmd *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
	}
	if _, ok := cmd.Annotations[skipSetup]; ok || services != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("lq is not configured")
	}

	s, err := bootstrap(BootstrapOptions{
		DatabasePath: databasePath,
		ConfigPath:   configPath,
		Verbose:      verbose,
	})
	if err != nil {
		return err
	}
	services = s
	return nil
}

// engine returns the query engine, building it on first use.
func engine() (driving.Engine, error) {
	if services == nil || services.Engine == nil {
		return nil, errors.New("query engine not configured")
	}
	return services.Engine()
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd.SetOut(os.Stdout)
	err := rootCmd.Execute()
	if services != nil && services.Close != nil {
		if cerr := services.Close(); cerr != nil {
			logger.Warn("closing database: %v", cerr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
