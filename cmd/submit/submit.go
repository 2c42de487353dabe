// Package submit contains the `condorsub submit` command.
package submit

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/ljmet/condorsub/cmd/util"
	"github.com/ljmet/condorsub/cmd/version"
	"github.com/ljmet/condorsub/config"
	"github.com/ljmet/condorsub/database"
	"github.com/ljmet/condorsub/jobs"
	"github.com/ljmet/condorsub/logger"
	"github.com/ljmet/condorsub/metrics"
	cutil "github.com/ljmet/condorsub/util"
	"github.com/spf13/cobra"
)

// NewCommand returns the submit command.
func NewCommand() *cobra.Command {
	cmd, _ := newCommandHooks()
	return cmd
}

type hooks struct {
	Run func(ctx context.Context, conf config.Config, datasets []string) error
}

func newCommandHooks() (*cobra.Command, *hooks) {
	hooks := &hooks{
		Run: Run,
	}

	var (
		configFile string
		flagConf   config.Config
		vars       []string
		datasets   []string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Write the job files of every dataset and submit them.",
		Long: `Enumerates the input files of each configured dataset, splits them into
jobs of --chunk-size inputs, renders the job templates into the dataset's
output directory and runs the submit command once per job.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliVars, err := util.ParseCliVars(vars)
			if err != nil {
				return err
			}
			flagConf.Variables = cliVars

			conf, err := util.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}

			ctx := cutil.SignalContext(context.Background(), time.Millisecond, syscall.SIGINT, syscall.SIGTERM)
			return hooks.Run(ctx, conf, datasets)
		},
	}

	cmd.SetGlobalNormalizationFunc(util.NormalizeFlags)
	f := cmd.Flags()
	f.AddFlagSet(util.ConfigFlags(&flagConf, &configFile))
	f.AddFlagSet(util.SubmitFlags(&flagConf, &vars, &datasets))

	return cmd, hooks
}

// Run materializes and submits the jobs of the selected datasets, or of
// every dataset if none are selected.
func Run(ctx context.Context, conf config.Config, datasets []string) error {
	logger.Configure(conf.Logger)
	runID := cutil.GenRunID()
	log := logger.Sub("submit", "runID", runID)
	version.Log(log)

	conf, err := config.FilterDatasets(conf, datasets)
	if err != nil {
		return err
	}
	if err := config.Validate(conf); err != nil {
		return err
	}

	submitter, err := util.NewSubmitter(conf.Submit)
	if err != nil {
		return err
	}

	var recorder database.Recorder
	if conf.Ledger.Path != "" {
		ledger, err := util.OpenLedger(conf.Ledger)
		if err != nil {
			return err
		}
		defer ledger.Close()
		if err := ledger.StartRun(ctx, runID, time.Now()); err != nil {
			return err
		}
		recorder = ledger
	}

	m, err := jobs.NewMaterializer(conf, submitter, recorder, log, runID)
	if err != nil {
		return err
	}

	log.Info("Starting run", "datasets", len(conf.Datasets), "chunkSize", conf.ChunkSize,
		"backend", conf.Submit.Backend, "dryRun", conf.Submit.DryRun)

	runner := &jobs.Runner{Materializer: m, Parallel: conf.Parallel, Log: log}
	reports, runErr := runner.RunAll(ctx, conf.ResolvedDatasets())

	n, submitted, failed := jobs.Totals(reports)
	log.Info("Run finished", "jobs", n, "submitted", submitted, "failed", failed)

	if conf.Metrics.TextfilePath != "" {
		if err := metrics.WriteTextfile(conf.Metrics.TextfilePath, time.Now()); err != nil {
			log.Error("Couldn't write metrics", "path", conf.Metrics.TextfilePath, "error", err)
		}
	}
	return runErr
}
