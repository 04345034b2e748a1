package ports

// FileProbe provides the low-level filesystem primitives the core consumes.
// Absence is a normal return value at every site, never an error: reads
// return nil and listings return an empty slice for missing paths.
//
//go:generate mockgen -source=probe.go -destination=mocks/mock_probe.go -package=mocks
type FileProbe interface {
	// Exists reports whether the path exists.
	Exists(path string) bool
	// ReadFile returns the file contents, or nil if it cannot be read.
	ReadFile(path string) []byte
	// ReadDir returns the entry names of a directory, or nil if it cannot
	// be listed.
	ReadDir(path string) []string
	// Remove deletes a file, treating "already absent" as a no-op.
	Remove(path string)
}
