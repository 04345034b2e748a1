// Package fs implements the filesystem probe over the os package.
package fs

import (
	"os"

	"go.trai.ch/esmx/internal/core/ports"
)

var _ ports.FileProbe = (*Probe)(nil)

// Probe implements ports.FileProbe using the standard library. Absence and
// read failures both map to nil returns: callers treat "not there" as a
// normal outcome, never an error.
type Probe struct{}

// NewProbe creates a new Probe.
func NewProbe() *Probe {
	return &Probe{}
}

// Exists reports whether the path exists.
func (p *Probe) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile returns the file contents, or nil if it cannot be read.
func (p *Probe) ReadFile(path string) []byte {
	// #nosec G304 -- paths are constructed from resolved project roots
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}

// ReadDir returns the entry names of a directory, or nil if it cannot be
// listed.
func (p *Probe) ReadDir(path string) []string {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Remove deletes a file. Already-absent targets are a no-op; expiry sweeps
// racing over the same prefix rely on that.
func (p *Probe) Remove(path string) {
	_ = os.Remove(path)
}
