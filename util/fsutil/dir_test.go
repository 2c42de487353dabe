package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirCreates(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(p))

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDirExisting(t *testing.T) {
	p := t.TempDir()
	marker := filepath.Join(p, "keep")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0644))

	require.NoError(t, EnsureDir(p))
	require.NoError(t, EnsureDir(p))

	assert.FileExists(t, marker, "existing contents must survive")
}

func TestEnsureDirOnFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(p, nil, 0644))
	assert.Error(t, EnsureDir(p))
}

func TestEnsurePath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	require.NoError(t, EnsurePath(filepath.Join(dir, "job.db")))
	assert.DirExists(t, dir)
}

func TestWriteFileAndMakeExecutable(t *testing.T) {
	p := filepath.Join(t.TempDir(), "job_1.csh")
	require.NoError(t, WriteFile(p, []byte("#!/bin/tcsh\n")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/tcsh\n", string(b))

	require.NoError(t, MakeUserExecutable(p))
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0100)
}
