package pbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractID(t *testing.T) {
	assert.Equal(t, "1234.pbs-server", extractID("1234.pbs-server\n"))
}
