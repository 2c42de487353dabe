package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
)

// ErrInvalid is wrapped by every configuration validation error.
var ErrInvalid = errors.New("invalid config")

// Validate checks the configuration for values the job materializer can't
// work with. All problems are reported at once.
func Validate(c Config) error {
	var result *multierror.Error
	invalid := func(format string, args ...interface{}) {
		result = multierror.Append(result, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...))
	}

	if c.ChunkSize < 1 {
		invalid("ChunkSize must be at least 1, got %d", c.ChunkSize)
	}
	if c.Parallel < 1 {
		invalid("Parallel must be at least 1, got %d", c.Parallel)
	}
	if c.Manifest.Marker == "" {
		invalid("Manifest.Marker is empty")
	}
	if c.Manifest.Extension == "" {
		invalid("Manifest.Extension is empty")
	}

	labels := map[string]bool{}
	for i, d := range c.Datasets {
		switch {
		case d.Label == "":
			invalid("Datasets[%d].Label is empty", i)
		case labels[d.Label]:
			invalid("duplicate dataset label %q", d.Label)
		}
		labels[d.Label] = true
		if d.Manifest == "" {
			invalid("Datasets[%d].Manifest is empty", i)
		}
		if d.OutputDir == "" && c.OutputRoot == "" {
			invalid("Datasets[%d] has no OutputDir and OutputRoot is empty", i)
		}
	}

	if len(c.Templates) == 0 {
		invalid("no Templates configured")
	}
	names := map[string]bool{}
	exts := map[string]bool{}
	submits := 0
	for i, t := range c.Templates {
		if t.Name == "" {
			invalid("Templates[%d].Name is empty", i)
		} else if names[t.Name] {
			invalid("duplicate template name %q", t.Name)
		}
		names[t.Name] = true
		if t.Path == "" {
			invalid("Templates[%d].Path is empty", i)
		}
		if t.Extension == "" {
			invalid("Templates[%d].Extension is empty", i)
		} else if exts[t.Extension] {
			invalid("two templates write the extension %q", t.Extension)
		}
		exts[t.Extension] = true
		if t.Submit {
			submits++
		}
	}
	if len(c.Templates) > 0 && submits != 1 {
		invalid("exactly one template must set Submit, found %d", submits)
	}

	switch c.Submit.Backend {
	case "htcondor", "slurm", "pbs", "gridengine", "noop":
	default:
		invalid("unknown Submit.Backend %q", c.Submit.Backend)
	}

	return result.ErrorOrNil()
}

// ExpandEnv returns a copy of c with environment variables expanded in
// paths, e.g. ${CMSSW_BASE}. Variable values are only touched by
// ExpandVar, which leaves everything but set ${NAME} references alone.
func ExpandEnv(c Config) Config {
	c.OutputRoot = os.ExpandEnv(c.OutputRoot)
	c.ManifestRoot = os.ExpandEnv(c.ManifestRoot)
	c.Ledger.Path = os.ExpandEnv(c.Ledger.Path)
	c.Metrics.TextfilePath = os.ExpandEnv(c.Metrics.TextfilePath)

	datasets := make([]Dataset, len(c.Datasets))
	for i, d := range c.Datasets {
		d.Manifest = os.ExpandEnv(d.Manifest)
		d.OutputDir = os.ExpandEnv(d.OutputDir)
		datasets[i] = d
	}
	c.Datasets = datasets

	templates := make([]Template, len(c.Templates))
	for i, t := range c.Templates {
		t.Path = os.ExpandEnv(t.Path)
		templates[i] = t
	}
	c.Templates = templates

	vars := make(map[string]string, len(c.Variables))
	for k, v := range c.Variables {
		vars[k] = ExpandVar(v)
	}
	c.Variables = vars
	return c
}

// ExpandVar replaces ${NAME} with the value of NAME when NAME is set in the
// environment and turns "$$" into "$". Any other "$" is kept as written,
// so shell text like "$WORKDIR/x" passes through to the templates.
func ExpandVar(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case '$':
			b.WriteByte('$')
			i++
			continue
		case '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end > 0 {
				if v, ok := os.LookupEnv(s[i+2 : i+2+end]); ok {
					b.WriteString(v)
					i += 2 + end
					continue
				}
			}
		}
		b.WriteByte('$')
	}
	return b.String()
}

// ResolvedDatasets returns the datasets with manifests resolved against
// ManifestRoot and output directories defaulted to OutputRoot/Label.
func (c Config) ResolvedDatasets() []Dataset {
	out := make([]Dataset, 0, len(c.Datasets))
	for _, d := range c.Datasets {
		if c.ManifestRoot != "" && !filepath.IsAbs(d.Manifest) {
			d.Manifest = filepath.Join(c.ManifestRoot, d.Manifest)
		}
		if d.OutputDir == "" {
			d.OutputDir = filepath.Join(c.OutputRoot, d.Label)
		}
		out = append(out, d)
	}
	return out
}

// FilterDatasets returns a copy of c keeping only the datasets named in
// labels. An empty list keeps every dataset. Unknown labels are an error.
func FilterDatasets(c Config, labels []string) (Config, error) {
	if len(labels) == 0 {
		return c, nil
	}
	byLabel := map[string]Dataset{}
	for _, d := range c.Datasets {
		byLabel[d.Label] = d
	}
	var kept []Dataset
	for _, l := range labels {
		d, ok := byLabel[l]
		if !ok {
			return c, fmt.Errorf("%w: no dataset labeled %q", ErrInvalid, l)
		}
		kept = append(kept, d)
	}
	c.Datasets = kept
	return c, nil
}
