// Package fs defines the local filesystem capability used by logsync.
// Pipelines only list directories and create files; everything else about
// the output directory is left to the implementation.
package fs

import (
	"os"
)

// File is an open, writable file handle.
type File interface {
	Close() error
	Name() string
	Write(p []byte) (n int, err error)
}

// Filesystem is the set of local filesystem operations the pipelines need.
type Filesystem interface {
	// CreateExclusive creates name for writing and fails with an error
	// wrapping os.ErrExist if it is already present.
	CreateExclusive(name string, perm os.FileMode) (File, error)

	// Exists reports whether path is present.
	Exists(path string) (bool, error)

	// MkdirAll creates path and any missing parents. It is idempotent.
	MkdirAll(path string, perm os.FileMode) error

	// OpenFile opens name with the given flags.
	OpenFile(name string, flag int, perm os.FileMode) (File, error)

	// ReadDir lists the entries of dirname.
	ReadDir(dirname string) ([]os.FileInfo, error)

	// ReadFile returns the full contents of path.
	ReadFile(path string) ([]byte, error)

	// Remove deletes name.
	Remove(name string) error

	// Stat describes name.
	Stat(name string) (os.FileInfo, error)

	// WriteFile creates or truncates filename and writes data to it.
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
