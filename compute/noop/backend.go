// Package noop provides a submitter that doesn't submit anything.
package noop

import (
	"context"
	"sync"

	"github.com/ljmet/condorsub/compute"
)

// Name of the backend in configuration.
const Name = "noop"

// Backend is a submitter that only records what it was asked to submit,
// which is useful for dry runs and testing.
type Backend struct {
	mtx       sync.Mutex
	submitted []Submission
}

// Submission is one recorded Submit call.
type Submission struct {
	Dir        string
	Descriptor string
}

// NewBackend returns a new noop Backend instance.
func NewBackend() *Backend {
	return &Backend{}
}

// Submit records the call and returns an empty result.
func (b *Backend) Submit(ctx context.Context, dir, descriptor string) (*compute.Result, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.submitted = append(b.submitted, Submission{Dir: dir, Descriptor: descriptor})
	return &compute.Result{Backend: Name}, nil
}

// Submitted returns the recorded calls in order.
func (b *Backend) Submitted() []Submission {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return append([]Submission(nil), b.submitted...)
}
