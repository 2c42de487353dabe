// Package database defines the submission ledger records shared by the
// ledger backends.
package database

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Status of a materialized job.
type Status string

// Job states, in the order a job normally moves through them.
const (
	Written   Status = "written"
	DryRun    Status = "dry-run"
	Submitted Status = "submitted"
	Failed    Status = "failed"
)

// Record describes one materialized job.
type Record struct {
	RunID   string
	Dataset string
	// 1-based job index within the dataset.
	Index  int
	Inputs []string
	// Output directory the artifacts were written to.
	Dir string
	// Base name of the artifact handed to the submit command.
	Descriptor string
	Status     Status
	JobID      string `json:",omitempty"`
	Error      string `json:",omitempty"`
	Time       time.Time
}

// Filter selects records. Zero values match everything.
type Filter struct {
	Dataset string
	Status  Status
	RunID   string
}

// Match reports whether r is selected by f.
func (f Filter) Match(r *Record) bool {
	if f.Dataset != "" && f.Dataset != r.Dataset {
		return false
	}
	if f.Status != "" && f.Status != r.Status {
		return false
	}
	if f.RunID != "" && f.RunID != r.RunID {
		return false
	}
	return true
}

// Recorder stores job records.
type Recorder interface {
	PutRecord(ctx context.Context, r *Record) error
}

// Ledger stores and lists job records and runs.
type Ledger interface {
	Recorder
	GetRecord(ctx context.Context, dataset string, index int) (*Record, error)
	ListRecords(ctx context.Context, f Filter) ([]*Record, error)
	StartRun(ctx context.Context, runID string, start time.Time) error
	ListRuns(ctx context.Context) ([]Run, error)
	Close() error
}

// Run is one invocation of the materializer.
type Run struct {
	ID    string
	Start time.Time
}

// Noop is a Recorder that drops every record.
type Noop struct{}

// PutRecord does nothing.
func (Noop) PutRecord(context.Context, *Record) error { return nil }
