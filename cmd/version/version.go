// Package version contains the `condorsub version` command.
package version

import (
	"fmt"

	"github.com/ljmet/condorsub/logger"
	"github.com/ljmet/condorsub/version"
	"github.com/spf13/cobra"
)

// Cmd represents the "version" command
var Cmd = &cobra.Command{
	Use:  "version",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

// Log logs build and version information to the given logger.
func Log(l *logger.Logger) {
	l.Debug("Version", version.LogFields()...)
}
