package vfs

import (
	"errors"
	"io"
)

// OpenFlags controls how a backend opens a file.
type OpenFlags uint8

const (
	FlagRead OpenFlags = 1 << iota
	FlagWrite
	FlagTruncate
	FlagCreate
)

// Has reports whether all bits of other are set in f.
func (f OpenFlags) Has(other OpenFlags) bool {
	return f&other == other
}

// Metadata describes a file or directory. For directories Size is the
// number of entries the backend reports, which only matters to UI
// selection logic; filesystem code must only rely on IsFile.
type Metadata struct {
	IsFile bool
	Size   uint64
}

// DirEntry is one entry returned by FS.ReadDir. Path is the full path of
// the entry relative to the backend root, not just its name.
type DirEntry struct {
	Path     string
	Metadata Metadata
}

// FileName returns the last component of the entry's path.
func (d DirEntry) FileName() string {
	return Base(d.Path)
}

// File is an open handle returned by FS.OpenFile. The handle owns no
// global state: closing it never invalidates the backend.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// Metadata reports the current size of the open file.
	Metadata() (Metadata, error)

	// Truncate changes the size of the file.
	Truncate(size uint64) error
}

// FS is the storage contract every rgssfs backend satisfies.
type FS interface {
	// OpenFile opens the file at path according to flags.
	OpenFile(path string, flags OpenFlags) (File, error)

	// Metadata stats the file or directory at path.
	Metadata(path string) (Metadata, error)

	// Rename moves the file at from to the path to.
	Rename(from, to string) error

	// Exists reports whether a file or directory exists at path.
	Exists(path string) (bool, error)

	// CreateDir creates the directory at path.
	CreateDir(path string) error

	// RemoveDir removes the directory at path and everything under it.
	RemoveDir(path string) error

	// RemoveFile removes the file at path.
	RemoveFile(path string) error

	// ReadDir lists the entries of the directory at path.
	ReadDir(path string) ([]DirEntry, error)
}

// Create opens path for writing, creating it if necessary.
func Create(fs FS, path string) (File, error) {
	return fs.OpenFile(path, FlagWrite|FlagCreate)
}

// Read opens the file at path and reads it fully into memory.
func Read(fs FS, path string) ([]byte, error) {
	meta, err := fs.Metadata(path)
	if err != nil {
		return nil, err
	}
	file, err := fs.OpenFile(path, FlagRead)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf, err := appendAll(make([]byte, 0, meta.Size), file)
	return buf, err
}

func appendAll(buf []byte, r io.Reader) ([]byte, error) {
	for {
		if len(buf) == cap(buf) {
			buf = append(buf, 0)[:len(buf)]
		}
		n, err := r.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, err
		}
	}
}

// ReadString reads the file at path as a UTF-8 string.
func ReadString(fs FS, path string) (string, error) {
	buf, err := Read(fs, path)
	return string(buf), err
}

// Write opens the file at path, creating and truncating it as needed, and
// writes data to it.
func Write(fs FS, path string, data []byte) error {
	file, err := fs.OpenFile(path, FlagWrite|FlagTruncate|FlagCreate)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = file.Write(data)
	return err
}

// Remove removes the file or directory at path.
func Remove(fs FS, path string) error {
	meta, err := fs.Metadata(path)
	if err != nil {
		return err
	}
	if meta.IsFile {
		return fs.RemoveFile(path)
	}
	return fs.RemoveDir(path)
}
