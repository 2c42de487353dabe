// Package jobs contains the `condorsub jobs` commands, which read and act on
// the submission ledger.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/ljmet/condorsub/cmd/util"
	"github.com/ljmet/condorsub/compute"
	"github.com/ljmet/condorsub/config"
	"github.com/ljmet/condorsub/database"
	"github.com/ljmet/condorsub/logger"
	"github.com/ljmet/condorsub/metrics"
	cutil "github.com/ljmet/condorsub/util"
	"github.com/spf13/cobra"
)

// ErrNoLedger is returned when Ledger.Path is not configured.
var ErrNoLedger = errors.New("no ledger configured, set Ledger.Path")

// ErrResubmitStatus is returned when resubmit is asked for jobs in a state
// other than failed or written.
var ErrResubmitStatus = errors.New("resubmit only selects failed or written jobs")

// NewCommand returns the jobs command.
func NewCommand() *cobra.Command {
	var (
		configFile string
		conf       config.Config
		flagConf   config.Config
		filter     database.Filter
		status     string

		resubmitStatus string
	)

	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Inspect and resubmit jobs recorded in the ledger.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			conf, err = util.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}
			if conf.Ledger.Path == "" {
				return ErrNoLedger
			}
			logger.Configure(conf.Logger)
			return nil
		},
	}

	cmd.SetGlobalNormalizationFunc(util.NormalizeFlags)
	pf := cmd.PersistentFlags()
	pf.AddFlagSet(util.ConfigFlags(&flagConf, &configFile))
	pf.StringVar(&filter.Dataset, "dataset", "", "Only jobs of the dataset with this label")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded jobs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Status = database.Status(status)
			ledger, err := util.OpenLedger(conf.Ledger)
			if err != nil {
				return err
			}
			defer ledger.Close()
			return List(cmd.Context(), cmd.OutOrStdout(), ledger, filter)
		},
	}
	list.Flags().StringVar(&status, "status", "", "Only jobs in this state. One of ['written', 'dry-run', 'submitted', 'failed']")
	list.Flags().StringVar(&filter.RunID, "run", "", "Only jobs of this run")

	resubmit := &cobra.Command{
		Use:   "resubmit",
		Short: "Submit the failed jobs again.",
		Long: `Runs the submit command again for every job whose last submission failed.
With --status written it instead picks up jobs whose files were written but
never submitted, e.g. after the submit process was killed.
The job files are not rendered again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			submitter, err := util.NewSubmitter(conf.Submit)
			if err != nil {
				return err
			}
			ledger, err := util.OpenLedger(conf.Ledger)
			if err != nil {
				return err
			}
			defer ledger.Close()
			ctx := cutil.SignalContext(context.Background(), time.Millisecond, syscall.SIGINT, syscall.SIGTERM)
			f := database.Filter{Dataset: filter.Dataset, Status: database.Status(resubmitStatus)}
			return Resubmit(ctx, ledger, submitter, f, logger.Sub("resubmit"))
		},
	}
	resubmit.Flags().AddFlagSet(util.BackendFlags(&flagConf))
	resubmit.Flags().StringVar(&resubmitStatus, "status", string(database.Failed), "Jobs in this state are submitted. One of ['failed', 'written']")

	cmd.AddCommand(list, resubmit)
	return cmd
}

// List writes the records matching f as a table.
func List(ctx context.Context, w io.Writer, ledger database.Ledger, f database.Filter) error {
	if ctx == nil {
		ctx = context.Background()
	}
	recs, err := ledger.ListRecords(ctx, f)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tJOB\tSTATUS\tBATCH ID\tDESCRIPTOR\tTIME\tERROR")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Dataset, r.Index, r.Status, dash(r.JobID), r.Descriptor,
			r.Time.Local().Format(time.RFC3339), dash(firstLine(r.Error)))
	}
	return tw.Flush()
}

// Resubmit submits the jobs matching f again and updates the ledger. Each
// job is tried once. f.Status selects failed jobs by default; written jobs
// may be chosen to recover a submit that died between writing and
// submitting.
func Resubmit(ctx context.Context, ledger database.Ledger, submitter compute.Submitter, f database.Filter, log *logger.Logger) error {
	switch f.Status {
	case "":
		f.Status = database.Failed
	case database.Failed, database.Written:
	default:
		return fmt.Errorf("%w: %q", ErrResubmitStatus, f.Status)
	}
	recs, err := ledger.ListRecords(ctx, f)
	if err != nil {
		return err
	}
	runID := cutil.GenRunID()
	if err := ledger.StartRun(ctx, runID, time.Now()); err != nil {
		return err
	}
	log = log.WithFields("runID", runID)
	log.Info("Resubmitting jobs", "status", f.Status, "jobs", len(recs))

	var result *multierror.Error
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return multierror.Append(result, err).ErrorOrNil()
		}

		res, err := submitter.Submit(ctx, rec.Dir, rec.Descriptor)
		rec.RunID = runID
		rec.Time = time.Now()
		if res != nil {
			rec.JobID = res.JobID
		}
		if err != nil {
			metrics.Submission(rec.Dataset, metrics.Failed)
			rec.Status = database.Failed
			rec.Error = err.Error()
			log.Warn("Submission failed", "dataset", rec.Dataset, "job", rec.Index, "error", err)
			result = multierror.Append(result, fmt.Errorf("%s job %d: %w", rec.Dataset, rec.Index, err))
		} else {
			metrics.Submission(rec.Dataset, metrics.Succeeded)
			rec.Status = database.Submitted
			rec.Error = ""
			log.Info("Submitted job", "dataset", rec.Dataset, "job", rec.Index, "batchID", rec.JobID)
		}
		if err := ledger.PutRecord(ctx, rec); err != nil {
			return err
		}
	}
	return result.ErrorOrNil()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
