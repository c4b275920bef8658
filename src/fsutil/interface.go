package fsutil

import "io"

// FileStore provides an interface for file system operations
type FileStore interface {
	// ReadFile reads a file and returns its contents
	ReadFile(path string) ([]byte, error)

	// ReadFileAsStream opens a file and returns a reader
	ReadFileAsStream(path string) (io.ReadCloser, error)

	// WriteTempFile writes data to a new file under dir whose name ends with suffix
	// and returns its path
	WriteTempFile(dir, suffix string, data []byte) (string, error)

	// MakeDirectory creates a new directory and all necessary parents
	MakeDirectory(path string) error

	// Remove removes a single file; removing a missing file is not an error
	Remove(path string) error
}
