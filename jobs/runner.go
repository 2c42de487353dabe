package jobs

import (
	"context"
	"fmt"

	"github.com/gammazero/workerpool"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/ljmet/condorsub/config"
	"github.com/ljmet/condorsub/logger"
)

// Runner materializes many datasets.
type Runner struct {
	Materializer *Materializer
	// Maximum number of datasets handled at once. Values below 1 mean 1.
	Parallel int
	Log      *logger.Logger
}

// RunAll materializes every dataset. A failing dataset doesn't stop the
// others; all failures are returned together. Reports are returned in the
// order of datasets and are never nil.
func (r *Runner) RunAll(ctx context.Context, datasets []config.Dataset) ([]*Report, error) {
	log := r.Log
	if log == nil {
		log = logger.New("runner")
	}
	parallel := r.Parallel
	if parallel < 1 {
		parallel = 1
	}

	reports := make([]*Report, len(datasets))
	errs := make([]error, len(datasets))

	wp := workerpool.New(parallel)
	for i, d := range datasets {
		i, d := i, d
		wp.Submit(func() {
			reports[i], errs[i] = r.Materializer.Materialize(ctx, d)
			if errs[i] != nil {
				log.Error("Dataset failed", "dataset", d.Label, "error", errs[i])
			}
		})
	}
	wp.StopWait()

	var result *multierror.Error
	for i, err := range errs {
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("dataset %s: %w", datasets[i].Label, err))
		}
	}
	return reports, result.ErrorOrNil()
}

// Totals sums the submission counts of reports.
func Totals(reports []*Report) (jobs, submitted, failed int) {
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		jobs += len(rep.Jobs)
		submitted += rep.Submitted
		failed += rep.Failed
	}
	return
}
