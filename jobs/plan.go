// Package jobs turns dataset manifests into rendered, submitted batch jobs.
package jobs

import (
	"strings"

	"github.com/ljmet/condorsub/config"
	"github.com/ljmet/condorsub/manifest"
)

// Chunk is the group of inputs processed by one job.
type Chunk struct {
	// 1-based job index.
	Index  int
	Inputs []manifest.Reference
}

// Plan partitions refs into consecutive chunks of at most size inputs.
// Chunk j holds the references at 1-based positions p with
// nfiles-1 < p < nfiles+size, where nfiles starts at 1 and advances by
// size per job. Every reference lands in exactly one chunk, in order, and
// only the last chunk may be short. size must be at least 1.
func Plan(refs []manifest.Reference, size int) []Chunk {
	if size < 1 {
		panic("jobs: chunk size must be at least 1")
	}
	var chunks []Chunk
	total := len(refs)
	for j, nfiles := 1, 1; nfiles <= total; j, nfiles = j+1, nfiles+size {
		end := nfiles - 1 + size
		if end > total {
			end = total
		}
		c := Chunk{Index: j, Inputs: make([]manifest.Reference, end-nfiles+1)}
		copy(c.Inputs, refs[nfiles-1:end])
		chunks = append(chunks, c)
	}
	return chunks
}

// RenderInputs formats the chunk's inputs as the body of a Python list,
// one quoted, prefixed reference per line:
//
//	                 'root://cmsxrootd.fnal.gov//store/.../a.root',
func RenderInputs(c Chunk, conf config.Inputs) string {
	var b strings.Builder
	for _, ref := range c.Inputs {
		b.WriteString(conf.Indent)
		b.WriteString("'")
		b.WriteString(conf.Prefix)
		b.WriteString(string(ref))
		b.WriteString("',\n")
	}
	return b.String()
}

// Strings returns the chunk inputs as plain strings.
func (c Chunk) Strings() []string {
	out := make([]string, len(c.Inputs))
	for i, r := range c.Inputs {
		out[i] = string(r)
	}
	return out
}
