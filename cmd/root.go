// Package cmd contains the condorsub CLI commands.
package cmd

import (
	"github.com/ljmet/condorsub/cmd/count"
	"github.com/ljmet/condorsub/cmd/examples"
	"github.com/ljmet/condorsub/cmd/jobs"
	"github.com/ljmet/condorsub/cmd/submit"
	"github.com/ljmet/condorsub/cmd/version"
	"github.com/spf13/cobra"
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:           "condorsub",
	Short:         "Generate batch jobs for dataset manifests and submit them.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	RootCmd.AddCommand(completionCmd)
	RootCmd.AddCommand(count.NewCommand())
	RootCmd.AddCommand(examples.Cmd)
	RootCmd.AddCommand(jobs.NewCommand())
	RootCmd.AddCommand(submit.NewCommand())
	RootCmd.AddCommand(version.Cmd)
}
