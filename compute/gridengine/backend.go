// Package gridengine submits jobs with qsub on Grid Engine systems.
package gridengine

import (
	"regexp"
	"time"

	"github.com/ljmet/condorsub/compute"
)

// Name of the backend in configuration.
const Name = "gridengine"

// DefaultCommand submits a batch script.
const DefaultCommand = "qsub"

var jobRE = regexp.MustCompile(`Your job (\d+) \(".*"\) has been submitted`)

// NewBackend returns a new Grid Engine backend instance.
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

func extractID(in string) string {
	m := jobRE.FindStringSubmatch(in)
	if m == nil {
		return ""
	}
	return m[1]
}
