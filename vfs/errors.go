package vfs

import "errors"

// Sentinel errors for the rgssfs storage contract.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// ErrNotExist is returned when a path does not resolve to a file or
	// directory, after any cache regeneration and glob fallback.
	ErrNotExist = errors.New("file or directory does not exist")

	// ErrNotSupported is returned for operations that are not meaningful
	// for a backend, such as renaming a file inside an archive.
	ErrNotSupported = errors.New("operation not supported by this filesystem")

	// Archive errors
	ErrInvalidHeader         = errors.New("archive header is invalid")
	ErrInvalidArchiveVersion = errors.New("archive version is unsupported")

	// ErrNoFilesystems is returned by an overlay with no layers.
	ErrNoFilesystems = errors.New("no filesystems are loaded to perform this operation")
)
