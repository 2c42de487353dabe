// Package testconfig builds throwaway configurations for tests.
package testconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ljmet/condorsub/config"
	"github.com/ljmet/condorsub/logger"
)

// AnalysisTemplate is a small analysis configuration template.
const AnalysisTemplate = `process.inputs = cms.untracked.vstring(
INFILES)
process.output = 'DIRECTORY/PREFIX_JOBID.root'
process.maxEvents = EVENTSTOPROCESS
`

// DescriptorTemplate is a small HTCondor submit description template.
const DescriptorTemplate = `universe = vanilla
Executable = PREFIX_JOBID.csh
Output = PREFIX_JOBID.out
Error = PREFIX_JOBID.err
Log = PREFIX_JOBID.log
Queue 1
`

// WrapperTemplate is a small job wrapper script template.
const WrapperTemplate = `#!/bin/csh
cd DIRECTORY
cmsRun PREFIX_JOBID.py
`

// WriteFile writes text to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, text string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

// WriteManifest writes the given lines as a manifest and returns its path.
func WriteManifest(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	text := strings.Join(lines, "\n")
	if len(lines) > 0 {
		text += "\n"
	}
	return WriteFile(t, dir, name, text)
}

// Workspace returns a config whose templates and output root live in a
// fresh temp. directory. The config has no datasets; add them with
// WriteManifest.
func Workspace(t testing.TB) (config.Config, string) {
	t.Helper()
	dir := t.TempDir()

	conf := config.DefaultConfig()
	conf.Logger = logger.DebugConfig()
	conf.OutputRoot = filepath.Join(dir, "out")
	conf.ManifestRoot = filepath.Join(dir, "manifests")
	conf.Variables = map[string]string{"EVENTSTOPROCESS": "-1"}
	conf.Templates = []config.Template{
		{
			Name:      "analysis",
			Path:      WriteFile(t, dir, "templates/analysis.templ", AnalysisTemplate),
			Extension: "py",
		},
		{
			Name:      "descriptor",
			Path:      WriteFile(t, dir, "templates/condor.templ", DescriptorTemplate),
			Extension: "condor",
			Submit:    true,
		},
		{
			Name:       "wrapper",
			Path:       WriteFile(t, dir, "templates/csh.templ", WrapperTemplate),
			Extension:  "csh",
			Executable: true,
		},
	}
	conf.Submit.Backend = "noop"
	return conf, dir
}
