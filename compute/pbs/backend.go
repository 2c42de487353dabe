// Package pbs submits jobs with qsub on PBS/Torque systems.
package pbs

import (
	"strings"
	"time"

	"github.com/ljmet/condorsub/compute"
)

// Name of the backend in configuration.
const Name = "pbs"

// DefaultCommand submits a batch script.
const DefaultCommand = "qsub"

// NewBackend returns a new PBS backend instance.
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

// extractID extracts the job id from the response returned by the `qsub` command.
// For PBS / Torque systems, `qsub` prints only the job id.
func extractID(in string) string {
	return strings.TrimSpace(in)
}
