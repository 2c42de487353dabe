// Package jobtpl renders job file templates. A template is plain text with
// bare uppercase placeholder tokens (DIRECTORY, JOBID, ...) that are
// replaced verbatim.
package jobtpl

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ljmet/condorsub/config"
)

// Placeholders filled in by the job materializer for every job.
const (
	Directory = "DIRECTORY"
	Prefix    = "PREFIX"
	JobID     = "JOBID"
	InFiles   = "INFILES"
)

// Builtins lists the per-job placeholders in replacement order.
var Builtins = []string{Directory, Prefix, JobID, InFiles}

var (
	// ErrTemplateNotFound is returned when a template file does not exist.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrMissingVariable is returned when a declared placeholder has no value.
	ErrMissingVariable = errors.New("missing template variable")
)

// Template is a loaded job file template.
type Template struct {
	Name       string
	Extension  string
	Executable bool
	Submit     bool
	// Placeholders in replacement order.
	Placeholders []string
	Text         string

	declared bool
}

// Load reads the template described by conf. variables are the configured
// variable names, used when conf declares no placeholders.
func Load(conf config.Template, variables map[string]string) (*Template, error) {
	b, err := os.ReadFile(conf.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s template %s", ErrTemplateNotFound, conf.Name, conf.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s template: %w", conf.Name, err)
	}
	return New(conf, string(b), variables), nil
}

// New returns a template for conf with the given text.
func New(conf config.Template, text string, variables map[string]string) *Template {
	placeholders := conf.Placeholders
	if len(placeholders) == 0 {
		placeholders = DefaultPlaceholders(variables)
	}
	return &Template{
		Name:         conf.Name,
		Extension:    conf.Extension,
		Executable:   conf.Executable,
		Submit:       conf.Submit,
		Placeholders: dedupe(placeholders),
		Text:         text,
		declared:     len(conf.Placeholders) > 0,
	}
}

// DefaultPlaceholders returns the built-in placeholders followed by the
// variable names in sorted order.
func DefaultPlaceholders(variables map[string]string) []string {
	names := make([]string, 0, len(variables))
	for k := range variables {
		names = append(names, k)
	}
	sort.Strings(names)
	return append(append([]string{}, Builtins...), names...)
}

// Check verifies that every placeholder can be given a value from
// available. It returns the explicitly declared placeholders which never
// occur in the template text; those are harmless but usually point at a
// typo.
func (t *Template) Check(available map[string]bool) (unused []string, err error) {
	var missing []string
	for _, p := range t.Placeholders {
		if !available[p] {
			missing = append(missing, p)
		}
		if t.declared && !strings.Contains(t.Text, p) {
			unused = append(unused, p)
		}
	}
	if len(missing) > 0 {
		return unused, fmt.Errorf("%w: %s template needs %s", ErrMissingVariable, t.Name, strings.Join(missing, ", "))
	}
	return unused, nil
}

// Render replaces every occurrence of each placeholder with its value.
// Placeholders are applied one after the other in declared order, so text
// introduced by one substitution is subject to the following ones.
func (t *Template) Render(values map[string]string) (string, error) {
	out := t.Text
	for _, p := range t.Placeholders {
		v, ok := values[p]
		if !ok {
			return "", fmt.Errorf("%w: %s in %s template", ErrMissingVariable, p, t.Name)
		}
		out = strings.ReplaceAll(out, p, v)
	}
	return out, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
