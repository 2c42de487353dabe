// Package metrics counts the work done by a run and exports it for the
// node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/ljmet/condorsub/util/fsutil"
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(inputs)
	prometheus.MustRegister(jobsWritten)
	prometheus.MustRegister(submissions)
	prometheus.MustRegister(lastRun)
}

var inputs = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "condorsub",
		Name:      "inputs_total",
		Help:      "Number of input references enumerated per dataset.",
	},
	[]string{"dataset"},
)

var jobsWritten = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "condorsub",
		Name:      "jobs_written_total",
		Help:      "Number of jobs whose artifacts were written.",
	},
	[]string{"dataset"},
)

var submissions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "condorsub",
		Name:      "submissions_total",
		Help:      "Number of submit command invocations by outcome.",
	},
	[]string{"dataset", "status"},
)

var lastRun = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "condorsub",
	Name:      "last_run_timestamp_seconds",
	Help:      "Unix time the last run finished.",
})

// Submission outcomes.
const (
	Succeeded = "succeeded"
	Failed    = "failed"
	Skipped   = "skipped"
)

// AddInputs counts n enumerated inputs for dataset.
func AddInputs(dataset string, n int) {
	inputs.WithLabelValues(dataset).Add(float64(n))
}

// JobWritten counts one written job for dataset.
func JobWritten(dataset string) {
	jobsWritten.WithLabelValues(dataset).Inc()
}

// Submission counts one submission with the given outcome.
func Submission(dataset, status string) {
	submissions.WithLabelValues(dataset, status).Inc()
}

// WriteTextfile stamps the run end time and writes every registered metric
// to path in the Prometheus text format.
func WriteTextfile(path string, end time.Time) error {
	lastRun.Set(float64(end.Unix()))
	if err := fsutil.EnsurePath(path); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
