package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "version: unknown", String())

	defer func(c string) { GitCommit = c }(GitCommit)
	GitCommit = "abc123"
	assert.Equal(t, "git commit: abc123\nversion: unknown", String())
	assert.Len(t, LogFields(), 8)
}
