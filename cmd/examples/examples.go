// Package examples contains the `condorsub examples` command.
package examples

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	ex "github.com/ljmet/condorsub/examples"
	"github.com/ljmet/condorsub/util/fsutil"
	"github.com/spf13/cobra"
)

var outDir string

// Cmd represents the examples command
var Cmd = &cobra.Command{
	Use:     "examples [name]",
	Aliases: []string{"example"},
	Short:   "Print an example config, job template or manifest.",
	Long: `Without arguments, lists the bundled examples. With a name, prints it.
With --out, writes every example to the given directory instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if outDir != "" {
			return writeAll(outDir)
		}

		// Print a list of example names and exit
		if len(args) == 0 || args[0] == "list" {
			for _, n := range names() {
				fmt.Fprintln(w, n)
			}
			return nil
		}

		data, ok := ex.Examples()[args[0]]
		if !ok {
			return fmt.Errorf("no example by the name of %s", args[0])
		}
		fmt.Fprint(w, data)
		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write the examples to this directory")
}

func names() []string {
	var out []string
	for n := range ex.Examples() {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func writeAll(dir string) error {
	if err := fsutil.EnsureDir(dir); err != nil {
		return err
	}
	for _, n := range names() {
		fn, _ := ex.FileName(n)
		if err := os.WriteFile(filepath.Join(dir, fn), []byte(ex.Examples()[n]), 0644); err != nil {
			return err
		}
	}
	return nil
}
