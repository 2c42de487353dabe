// Package count contains the `condorsub count` command.
package count

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ljmet/condorsub/cmd/util"
	"github.com/ljmet/condorsub/config"
	"github.com/ljmet/condorsub/jobs"
	"github.com/ljmet/condorsub/manifest"
	"github.com/spf13/cobra"
)

// NewCommand returns the count command.
func NewCommand() *cobra.Command {
	var (
		configFile string
		flagConf   config.Config
		datasets   []string
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count the input files and jobs of each dataset.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := util.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}
			conf, err = config.FilterDatasets(conf, datasets)
			if err != nil {
				return err
			}
			return Run(cmd.OutOrStdout(), conf)
		},
	}

	cmd.SetGlobalNormalizationFunc(util.NormalizeFlags)
	f := cmd.Flags()
	f.AddFlagSet(util.ConfigFlags(&flagConf, &configFile))
	f.IntVar(&flagConf.ChunkSize, "chunk-size", flagConf.ChunkSize, "Number of input files per job")
	f.StringSliceVar(&datasets, "dataset", nil, "Only count the dataset with this label. This flag can be used multiple times")
	return cmd
}

// Run prints, per dataset, the number of inputs found by the counting and
// the extraction pass over its manifest and the resulting number of jobs.
func Run(w io.Writer, conf config.Config) error {
	if conf.ChunkSize < 1 {
		return fmt.Errorf("%w: ChunkSize must be at least 1, got %d", config.ErrInvalid, conf.ChunkSize)
	}
	e := manifest.NewEnumerator(conf.Manifest)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tCOUNTED\tREAD\tJOBS\tMANIFEST")
	for _, d := range conf.ResolvedDatasets() {
		n, err := e.Count(d.Manifest)
		if err != nil {
			tw.Flush()
			return err
		}
		refs, err := e.Enumerate(d.Manifest)
		if err != nil {
			tw.Flush()
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", d.Label, n, len(refs), len(jobs.Plan(refs, conf.ChunkSize)), d.Manifest)
	}
	return tw.Flush()
}
