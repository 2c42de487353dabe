// Package manifest reads dataset manifests: line-oriented listings of the
// input files a dataset is made of.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ljmet/condorsub/config"
)

// ErrManifestNotFound is returned when the manifest path does not exist.
var ErrManifestNotFound = errors.New("manifest not found")

// Reference locates one input data object, e.g. "/store/mc/.../file.root".
type Reference string

// Enumerator extracts references from manifests.
type Enumerator struct {
	// A line is a reference if Marker occurs at an index greater than zero.
	// A line starting with Marker is treated as a header and skipped.
	Marker string
	// References are cut after the first Extension.
	Extension string
}

// NewEnumerator returns an Enumerator for the given manifest config.
func NewEnumerator(conf config.Manifest) *Enumerator {
	return &Enumerator{
		Marker:    conf.Marker,
		Extension: conf.Extension,
	}
}

// IsReference reports whether line references a data object.
func (e *Enumerator) IsReference(line string) bool {
	return strings.Index(line, e.Marker) > 0
}

// Normalize truncates line at the first Extension and re-appends it,
// dropping anything that trails the file name. A line without Extension
// is kept whole.
func (e *Enumerator) Normalize(line string) Reference {
	before, _, _ := strings.Cut(line, e.Extension)
	return Reference(before + e.Extension)
}

// Count returns the number of reference lines in the manifest at path.
// It does not extract anything, so it can be checked against Enumerate.
func (e *Enumerator) Count(path string) (int, error) {
	count := 0
	err := e.scan(path, func(string) { count++ })
	return count, err
}

// Enumerate returns the references in the manifest at path, in manifest
// order. Duplicates are kept.
func (e *Enumerator) Enumerate(path string) ([]Reference, error) {
	var refs []Reference
	err := e.scan(path, func(line string) {
		refs = append(refs, e.Normalize(line))
	})
	return refs, err
}

// Read returns the references read from r.
func (e *Enumerator) Read(r io.Reader) ([]Reference, error) {
	var refs []Reference
	err := e.read(r, func(line string) {
		refs = append(refs, e.Normalize(line))
	})
	return refs, err
}

func (e *Enumerator) scan(path string, fn func(string)) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrManifestNotFound, path)
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if err := e.read(f, fn); err != nil {
		return fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return nil
}

func (e *Enumerator) read(r io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(r)
	// long xrootd paths with trailing metadata can exceed the default buffer
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if e.IsReference(line) {
			fn(line)
		}
	}
	return scanner.Err()
}
