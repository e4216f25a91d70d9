// Package vfs defines the storage contract shared by every filesystem in
// rgssfs, along with the sentinel errors and path helpers the
// implementations depend on.
//
// A storage backend is anything that implements the FS interface: a host
// directory (vfs/host), an encrypted RGSSAD archive (vfs/archive), an
// ordered stack of other backends (vfs/overlay), or a case-folding cache
// wrapped around one of those (vfs/pathcache). Editor-facing code is
// written once against FS and does not care which concrete layering is in
// effect.
//
// Paths are UTF-8, forward-slash separated, and relative to the backend
// root. The empty string names the root itself.
package vfs
