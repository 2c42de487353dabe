// Package config contains the condorsub configuration and its defaults.
package config

import (
	"github.com/ljmet/condorsub/logger"
)

// Config describes configuration for condorsub.
type Config struct {
	Logger logger.Config
	// Number of input references per job.
	ChunkSize int
	// Parent of the per-dataset output directories.
	OutputRoot string
	// Relative dataset manifest paths are resolved against ManifestRoot.
	ManifestRoot string
	Manifest     Manifest
	Inputs       Inputs
	Datasets     []Dataset
	// Values for template placeholders, e.g. systematic flags.
	Variables map[string]string
	Templates []Template
	Submit    Submit
	// Number of datasets materialized at the same time.
	Parallel int
	Ledger   Ledger
	Metrics  Metrics
}

// Manifest describes how input references are recognized in a manifest.
type Manifest struct {
	// A line is a reference if Marker occurs at an index greater than zero.
	Marker string
	// References are truncated after the first Extension.
	Extension string
}

// Inputs describes how a chunk is rendered into the input-list placeholder.
type Inputs struct {
	// Prepended to every reference, e.g. an xrootd redirector.
	Prefix string
	// Leading whitespace of every listing line.
	Indent string
}

// Dataset is one named collection of input files sharing a manifest and an
// output directory.
type Dataset struct {
	Label     string
	Manifest  string
	OutputDir string
}

// Template describes one job artifact rendered per chunk.
type Template struct {
	Name      string
	Path      string
	Extension string
	// Placeholders replaced in declared order. Empty means the built-in
	// placeholders followed by every configured variable.
	Placeholders []string
	// Add the user execute bit after writing.
	Executable bool
	// The rendered artifact is handed to the submit command.
	Submit bool
}

// Submit describes the batch system collaborator.
type Submit struct {
	// One of htcondor, slurm, pbs, gridengine, noop.
	Backend string
	// Overrides the backend's default command. May contain arguments.
	Command string
	// Abort the dataset on the first failed submission.
	FailFast bool
	// Write artifacts but do not submit.
	DryRun bool
	// Per-submission timeout. Zero disables it.
	Timeout Duration
}

// Ledger describes the submission record database.
type Ledger struct {
	// BoltDB file path. Empty disables the ledger.
	Path string
}

// Metrics describes where run metrics are written.
type Metrics struct {
	// node_exporter textfile collector output. Empty disables it.
	TextfilePath string
}
