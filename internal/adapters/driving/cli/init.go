package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a litequery.toml config file",
	Long: `Writes litequery.toml (or the file given with --config) naming the
database given with --database, or database.db. An existing file is never
overwritten.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipSetup: ""},
	RunE:        runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if initializer == nil {
		return errors.New("lq is not configured")
	}
	path, err := initializer(configPath, databasePath)
	if err != nil {
		return err
	}
	cmd.Println(styles.Success.Render("Created " + path))
	return nil
}
