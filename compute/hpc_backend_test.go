package compute

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubmit writes a shell script standing in for condor_submit and
// returns its path.
func fakeSubmit(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fake_submit")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(p, []byte(script), 0755))
	return p
}

func TestSubmitRunsInDir(t *testing.T) {
	bin := fakeSubmit(t, `echo "dir=$(pwd) arg=$1"; echo "1 job(s) submitted to cluster 42."`)
	dir := t.TempDir()
	b := &HPCBackend{
		Name:      "test",
		SubmitCmd: bin,
		ExtractID: func(s string) string {
			if strings.Contains(s, "cluster 42") {
				return "42"
			}
			return ""
		},
	}

	res, err := b.Submit(context.Background(), dir, "QCD_1.condor")
	require.NoError(t, err)
	wd, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "arg=QCD_1.condor")
	assert.Contains(t, res.Stdout, "dir="+wd)
	assert.Equal(t, "42", res.JobID)
	assert.Equal(t, "test", res.Backend)
	assert.Zero(t, res.ExitCode)
}

func TestSubmitExtraArgs(t *testing.T) {
	bin := fakeSubmit(t, `echo "$@"`)
	b := &HPCBackend{Name: "test", SubmitCmd: bin + ` -batch-name "fake rate"`}

	res, err := b.Submit(context.Background(), t.TempDir(), "a.condor")
	require.NoError(t, err)
	assert.Equal(t, "-batch-name fake rate a.condor\n", res.Stdout)
}

func TestSubmitNonZeroExit(t *testing.T) {
	bin := fakeSubmit(t, `echo "ERROR: no schedd" >&2; exit 3`)
	b := &HPCBackend{Name: "test", SubmitCmd: bin}

	res, err := b.Submit(context.Background(), t.TempDir(), "a.condor")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubmitFailed))
	assert.False(t, errors.Is(err, ErrSubmitInvocation))
	assert.Contains(t, err.Error(), "no schedd")
	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "ERROR: no schedd\n", res.Stderr)
}

func TestSubmitMissingCommand(t *testing.T) {
	b := &HPCBackend{Name: "test", SubmitCmd: filepath.Join(t.TempDir(), "condor_submit")}
	_, err := b.Submit(context.Background(), t.TempDir(), "a.condor")
	assert.True(t, errors.Is(err, ErrSubmitInvocation))

	b.SubmitCmd = "  "
	_, err = b.Submit(context.Background(), t.TempDir(), "a.condor")
	assert.True(t, errors.Is(err, ErrSubmitInvocation))

	b.SubmitCmd = `"unterminated`
	_, err = b.Submit(context.Background(), t.TempDir(), "a.condor")
	assert.True(t, errors.Is(err, ErrSubmitInvocation))
}

func TestSubmitTimeout(t *testing.T) {
	bin := fakeSubmit(t, `exec sleep 10`)
	b := &HPCBackend{Name: "test", SubmitCmd: bin, Timeout: 50 * time.Millisecond}

	start := time.Now()
	_, err := b.Submit(context.Background(), t.TempDir(), "a.condor")
	assert.True(t, errors.Is(err, ErrSubmitFailed))
	assert.Less(t, time.Since(start), 5*time.Second)
}
