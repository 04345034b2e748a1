package domain

import "path/filepath"

const (
	// ContainerDirName is the dependency container directory. A directory
	// with this basename is never treated as a project root itself.
	ContainerDirName = "node_modules"

	// ManifestFileName is the dependency manifest of a project.
	ManifestFileName = "package.json"

	// RCFileName is the base name of the per-project activation file.
	// Structured and executable variants append an extension to it.
	RCFileName = ".esmxrc"

	// ManifestFieldName is the nested manifest field that may carry
	// activation settings when no activation file is present.
	ManifestFieldName = "esmx"

	// ToolPackageName is the name esmx is declared under in a manifest's
	// dependency fields. The declared range gates activation.
	ToolPackageName = "esmx"

	// CacheDirName is the directory holding translated artifacts,
	// relative to the project root.
	CacheDirName = ".cache"

	// BlobFileName holds the concatenated auxiliary payloads (source
	// maps) of all persisted entries.
	BlobFileName = ".data.blob"

	// MetaFileName holds the cache metadata: the format version stamp and
	// the per-entry spans into the blob.
	MetaFileName = ".data.json"

	// DirtyMarkerName signals an interrupted metadata flush. Its presence
	// invalidates the whole cache.
	DirtyMarkerName = ".dirty"

	// CoverageMarkerName records that the cache was written while
	// coverage instrumentation was active. A mismatch with the current
	// process state invalidates the whole cache.
	CoverageMarkerName = ".nyc"

	// BabelCacheDirName is the co-located cache a babel register hook
	// maintains under the same .cache parent. Its structured-text files
	// are purged together with a wholesale invalidation.
	BabelCacheDirName = "@babel/register"

	// EntrySuffix is the extension of ordinary payload files.
	EntrySuffix = ".js"

	// GzipSuffix marks a gzip-framed payload file.
	GzipSuffix = ".gz"

	// GzipThreshold is the payload size above which entries are
	// gzip-framed on disk.
	GzipThreshold = 4096

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCachePath returns the cache directory for a project root:
// <root>/node_modules/.cache/esmx.
func DefaultCachePath(root string) string {
	return filepath.Join(root, ContainerDirName, CacheDirName, ToolPackageName)
}
