// Package fsutil contains filesystem helpers shared by the job writers.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir ensures a directory exists. An existing directory is not an
// error; an existing non-directory is.
func EnsureDir(p string) error {
	info, err := os.Stat(p)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("%s exists and is not a directory", p)
	case !os.IsNotExist(err):
		return err
	}
	return os.MkdirAll(p, 0755)
}

// EnsurePath ensures a directory exists, given a file path.
func EnsurePath(p string) error {
	return EnsureDir(filepath.Dir(p))
}

// WriteFile creates p, writes data and closes it. The file is created with
// mode 0644 and truncated if it already exists.
func WriteFile(p string, data []byte) error {
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MakeUserExecutable adds the user execute bit to p, like `chmod u+x`.
func MakeUserExecutable(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	return os.Chmod(p, info.Mode().Perm()|0100)
}
