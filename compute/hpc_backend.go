// Package compute hands rendered job descriptors to a batch system.
package compute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	shellquote "github.com/kballard/go-shellquote"
)

var (
	// ErrSubmitInvocation is returned when the submit command could not be
	// started at all.
	ErrSubmitInvocation = errors.New("submit command could not be run")
	// ErrSubmitFailed is returned when the submit command ran and failed.
	ErrSubmitFailed = errors.New("submit command failed")
)

// Submitter submits a job descriptor to a batch system.
type Submitter interface {
	// Submit submits the descriptor file, named relative to dir, with dir as
	// the working directory.
	Submit(ctx context.Context, dir, descriptor string) (*Result, error)
}

// Result describes one invocation of a submit command.
type Result struct {
	Backend string
	// Batch system job id, empty if it couldn't be extracted.
	JobID    string
	Stdout   string
	Stderr   string
	ExitCode int
}

// HPCBackend represents an HPC batch system such as HTCondor, Slurm,
// Grid Engine, etc. which is driven through a submit command.
type HPCBackend struct {
	Name string
	// Command and arguments; the descriptor is appended as the last argument.
	SubmitCmd string
	ExtractID func(string) string
	// Zero means no timeout.
	Timeout time.Duration
}

// Submit submits a descriptor via "condor_submit", "sbatch", "qsub", etc.
func (b *HPCBackend) Submit(ctx context.Context, dir, descriptor string) (*Result, error) {
	argv, err := shellquote.Split(b.SubmitCmd)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrSubmitInvocation, b.SubmitCmd, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: empty submit command for %s", ErrSubmitInvocation, b.Name)
	}

	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], descriptor)...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	res := &Result{
		Backend: b.Name,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() != nil:
		res.ExitCode = -1
		return res, fmt.Errorf("%w: %s %s: %v", ErrSubmitFailed, argv[0], descriptor, ctx.Err())
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, fmt.Errorf("%w: %s %s exited with status %d: %s",
			ErrSubmitFailed, argv[0], descriptor, res.ExitCode, strings.TrimSpace(res.Stderr))
	default:
		res.ExitCode = -1
		return res, fmt.Errorf("%w: %s: %v", ErrSubmitInvocation, argv[0], err)
	}

	if b.ExtractID != nil {
		res.JobID = b.ExtractID(res.Stdout)
	}
	return res, nil
}
