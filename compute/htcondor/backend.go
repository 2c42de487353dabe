// Package htcondor submits jobs with condor_submit.
package htcondor

import (
	"regexp"
	"time"

	"github.com/ljmet/condorsub/compute"
)

// Name of the backend in configuration.
const Name = "htcondor"

// DefaultCommand submits a descriptor to the local schedd.
const DefaultCommand = "condor_submit"

var clusterRE = regexp.MustCompile(`submitted to cluster (\d+)`)

// NewBackend returns a new HTCondor backend instance. An empty cmd selects
// DefaultCommand.
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

// extractID extracts the cluster id from the response returned by the `condor_submit` command.
// Example response:
// Submitting job(s).
// 1 job(s) submitted to cluster 1.
func extractID(in string) string {
	m := clusterRE.FindStringSubmatch(in)
	if m == nil {
		return ""
	}
	return m[1]
}
