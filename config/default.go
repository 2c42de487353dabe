package config

import (
	"strings"

	"github.com/ljmet/condorsub/logger"
)

// DefaultConfig returns configuration with simple defaults.
func DefaultConfig() Config {
	return Config{
		Logger:    logger.DefaultConfig(),
		ChunkSize: 1,
		Manifest: Manifest{
			Marker:    "root",
			Extension: ".root",
		},
		Inputs: Inputs{
			Prefix: "root://cmsxrootd.fnal.gov/",
			Indent: strings.Repeat(" ", 17),
		},
		Variables: map[string]string{},
		Submit: Submit{
			Backend: "htcondor",
		},
		Parallel: 1,
	}
}
