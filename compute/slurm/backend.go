// Package slurm submits jobs with sbatch.
package slurm

import (
	"regexp"
	"time"

	"github.com/ljmet/condorsub/compute"
)

// Name of the backend in configuration.
const Name = "slurm"

// DefaultCommand submits a batch script.
const DefaultCommand = "sbatch"

var jobRE = regexp.MustCompile(`Submitted batch job (\d+)`)

// NewBackend returns a new Slurm backend instance.
func NewBackend(cmd string, timeout time.Duration) *compute.HPCBackend {
	if cmd == "" {
		cmd = DefaultCommand
	}
	return &compute.HPCBackend{
		Name:      Name,
		SubmitCmd: cmd,
		ExtractID: extractID,
		Timeout:   timeout,
	}
}

// extractID extracts the job id from the response returned by the `sbatch` command.
// Example response:
// Submitted batch job 2
func extractID(in string) string {
	m := jobRE.FindStringSubmatch(in)
	if m == nil {
		return ""
	}
	return m[1]
}
