package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ljmet/condorsub/compute"
	"github.com/ljmet/condorsub/config"
	"github.com/ljmet/condorsub/database"
	"github.com/ljmet/condorsub/jobtpl"
	"github.com/ljmet/condorsub/logger"
	"github.com/ljmet/condorsub/manifest"
	"github.com/ljmet/condorsub/metrics"
	"github.com/ljmet/condorsub/util/fsutil"
)

// ErrOutputWrite is returned when an output directory or artifact can't be
// written.
var ErrOutputWrite = errors.New("output write failed")

// Artifact is one rendered file of a job.
type Artifact struct {
	Template string
	Path     string
}

// JobResult describes one materialized job.
type JobResult struct {
	Chunk     Chunk
	Artifacts []Artifact
	// Nil on dry runs.
	Result *compute.Result
	// Submission error, if any.
	Err error
}

// Report summarizes one dataset.
type Report struct {
	Dataset string
	Dir     string
	// Inputs counted in the manifest.
	Total     int
	Jobs      []JobResult
	Submitted int
	Failed    int
}

// Materializer renders, writes and submits the jobs of a dataset.
type Materializer struct {
	conf       config.Config
	enumerator *manifest.Enumerator
	templates  []*jobtpl.Template
	submitter  compute.Submitter
	recorder   database.Recorder
	log        *logger.Logger
	runID      string
}

// NewMaterializer loads and checks the configured templates. A nil
// recorder disables the ledger.
func NewMaterializer(conf config.Config, submitter compute.Submitter, recorder database.Recorder, log *logger.Logger, runID string) (*Materializer, error) {
	if recorder == nil {
		recorder = database.Noop{}
	}
	if log == nil {
		log = logger.New("jobs")
	}

	available := map[string]bool{}
	for _, b := range jobtpl.Builtins {
		available[b] = true
	}
	for k := range conf.Variables {
		available[k] = true
	}

	var templates []*jobtpl.Template
	for _, tc := range conf.Templates {
		tpl, err := jobtpl.Load(tc, conf.Variables)
		if err != nil {
			return nil, err
		}
		unused, err := tpl.Check(available)
		if err != nil {
			return nil, err
		}
		for _, p := range unused {
			log.Warn("placeholder does not occur in template", "template", tpl.Name, "placeholder", p)
		}
		templates = append(templates, tpl)
	}

	return &Materializer{
		conf:       conf,
		enumerator: manifest.NewEnumerator(conf.Manifest),
		templates:  templates,
		submitter:  submitter,
		recorder:   recorder,
		log:        log,
		runID:      runID,
	}, nil
}

// Materialize writes and submits every job of dataset d. It stops at the
// first write error, and at the first submission error if FailFast is set.
// The returned report covers the jobs handled so far, also on error.
func (m *Materializer) Materialize(ctx context.Context, d config.Dataset) (*Report, error) {
	log := m.log.WithFields("dataset", d.Label)
	report := &Report{Dataset: d.Label, Dir: d.OutputDir}

	total, err := m.enumerator.Count(d.Manifest)
	if err != nil {
		return report, err
	}
	refs, err := m.enumerator.Enumerate(d.Manifest)
	if err != nil {
		return report, err
	}
	if len(refs) != total {
		return report, fmt.Errorf("manifest %s changed while reading: counted %d inputs, read %d", d.Manifest, total, len(refs))
	}
	report.Total = total
	metrics.AddInputs(d.Label, total)
	log.Info("Enumerated inputs", "manifest", d.Manifest, "inputs", total)

	if total == 0 {
		return report, nil
	}
	if err := fsutil.EnsureDir(d.OutputDir); err != nil {
		return report, fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}

	for _, chunk := range Plan(refs, m.conf.ChunkSize) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		jr, err := m.writeJob(d, chunk)
		if err != nil {
			return report, err
		}
		metrics.JobWritten(d.Label)

		rec := &database.Record{
			RunID:      m.runID,
			Dataset:    d.Label,
			Index:      chunk.Index,
			Inputs:     chunk.Strings(),
			Dir:        d.OutputDir,
			Descriptor: m.descriptor(d, chunk.Index),
			Status:     database.Written,
			Time:       time.Now(),
		}
		m.record(ctx, log, rec)

		if m.conf.Submit.DryRun {
			rec.Status = database.DryRun
			m.record(ctx, log, rec)
			metrics.Submission(d.Label, metrics.Skipped)
			report.Jobs = append(report.Jobs, jr)
			log.Debug("Wrote job", "job", chunk.Index, "inputs", len(chunk.Inputs))
			continue
		}

		jr.Result, jr.Err = m.submitter.Submit(ctx, d.OutputDir, rec.Descriptor)
		report.Jobs = append(report.Jobs, jr)
		rec.Time = time.Now()
		if jr.Result != nil {
			rec.JobID = jr.Result.JobID
		}

		if jr.Err != nil {
			report.Failed++
			metrics.Submission(d.Label, metrics.Failed)
			rec.Status = database.Failed
			rec.Error = jr.Err.Error()
			m.record(ctx, log, rec)
			log.Warn("Submission failed", "job", chunk.Index, "descriptor", rec.Descriptor, "error", jr.Err)
			if m.conf.Submit.FailFast {
				return report, jr.Err
			}
			continue
		}

		report.Submitted++
		metrics.Submission(d.Label, metrics.Succeeded)
		rec.Status = database.Submitted
		m.record(ctx, log, rec)
		log.Info("Submitted job", "job", chunk.Index, "descriptor", rec.Descriptor, "batchID", rec.JobID)
	}

	log.Info("Dataset done", "jobs", len(report.Jobs), "submitted", report.Submitted, "failed", report.Failed)
	return report, nil
}

func (m *Materializer) writeJob(d config.Dataset, chunk Chunk) (JobResult, error) {
	jr := JobResult{Chunk: chunk}
	values := make(map[string]string, len(m.conf.Variables)+len(jobtpl.Builtins))
	for k, v := range m.conf.Variables {
		values[k] = v
	}
	values[jobtpl.Directory] = d.OutputDir
	values[jobtpl.Prefix] = d.Label
	values[jobtpl.JobID] = strconv.Itoa(chunk.Index)
	values[jobtpl.InFiles] = RenderInputs(chunk, m.conf.Inputs)

	for _, tpl := range m.templates {
		text, err := tpl.Render(values)
		if err != nil {
			return jr, err
		}
		p := filepath.Join(d.OutputDir, artifactName(d.Label, chunk.Index, tpl.Extension))
		if err := fsutil.WriteFile(p, []byte(text)); err != nil {
			return jr, fmt.Errorf("%w: %v", ErrOutputWrite, err)
		}
		if tpl.Executable {
			if err := fsutil.MakeUserExecutable(p); err != nil {
				return jr, fmt.Errorf("%w: %v", ErrOutputWrite, err)
			}
		}
		jr.Artifacts = append(jr.Artifacts, Artifact{Template: tpl.Name, Path: p})
	}
	return jr, nil
}

// descriptor returns the base name of the artifact handed to the submit
// command.
func (m *Materializer) descriptor(d config.Dataset, index int) string {
	for _, tpl := range m.templates {
		if tpl.Submit {
			return artifactName(d.Label, index, tpl.Extension)
		}
	}
	return ""
}

func (m *Materializer) record(ctx context.Context, log *logger.Logger, rec *database.Record) {
	if err := m.recorder.PutRecord(ctx, rec); err != nil {
		log.Error("Couldn't record job in ledger", "job", rec.Index, "error", err)
	}
}

func artifactName(label string, index int, ext string) string {
	return fmt.Sprintf("%s_%d.%s", label, index, ext)
}
