package slurm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractID(t *testing.T) {
	assert.Equal(t, "2", extractID("Submitted batch job 2\n"))
	assert.Equal(t, "", extractID("sbatch: error: invalid partition\n"))
	assert.Equal(t, DefaultCommand, NewBackend("", 0).SubmitCmd)
}
