// Package storage defines the knowledge-root file-system abstraction.
package storage

// Provider is the interface for knowledge store file operations.
// All paths are relative to the knowledge root.
type Provider interface {
	// List returns the relative paths of every .md file under dir.
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (temp file + fsync + rename).
	Write(path string, content []byte) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Abs resolves path against the root, rejecting escapes.
	Abs(path string) (string, error)
}
