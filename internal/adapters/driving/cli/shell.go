package cli

import (
	"errors"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// sqliteBinary is the shell started by "lq shell".
var sqliteBinary = "sqlite3"

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start a sqlite3 shell on the database",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, _ []string) error {
	bin, err := exec.LookPath(sqliteBinary)
	if err != nil {
		return errors.New("sqlite3 command not found")
	}

	c := exec.CommandContext(contextOf(cmd), bin, services.Config.DatabasePath)
	c.Stdin = os.Stdin
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	return c.Run()
}
