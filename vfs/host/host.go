package host

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/afero"

	"github.com/rgsskit/rgssfs/vfs"
)

// FS exposes an afero filesystem through the vfs.FS contract.
type FS struct {
	fs afero.Fs
}

// New wraps an existing afero filesystem.
func New(afs afero.Fs) *FS {
	return &FS{fs: afs}
}

// NewDir returns a host filesystem rooted at the given OS directory.
func NewDir(root string) *FS {
	return &FS{fs: afero.NewBasePathFs(afero.NewOsFs(), root)}
}

// NewOS returns a host filesystem over the whole OS filesystem.
func NewOS() *FS {
	return &FS{fs: afero.NewOsFs()}
}

// NewMem returns an empty in-memory host filesystem.
func NewMem() *FS {
	return &FS{fs: afero.NewMemMapFs()}
}

// TempFile creates an unlinked-on-close scratch file on the host OS
// filesystem, used by the archive writer to spool v3 bodies.
func TempFile() (vfs.File, error) {
	f, err := os.CreateTemp("", "rgssfs-*.tmp")
	if err != nil {
		return nil, err
	}
	return &tempFile{File: f}, nil
}

// hostPath converts a contract path to the form afero expects; the root
// is "." rather than the empty string.
func hostPath(path string) string {
	if p := vfs.Clean(path); p != "" {
		return p
	}
	return "."
}

func osFlags(flags vfs.OpenFlags) int {
	var flag int
	switch {
	case flags.Has(vfs.FlagRead | vfs.FlagWrite):
		flag = os.O_RDWR
	case flags.Has(vfs.FlagWrite):
		flag = os.O_WRONLY
	default:
		flag = os.O_RDONLY
	}
	if flags.Has(vfs.FlagCreate) {
		flag |= os.O_CREATE
	}
	if flags.Has(vfs.FlagTruncate) {
		flag |= os.O_TRUNC
	}
	return flag
}

// mapErr translates backend not-exist conditions to vfs.ErrNotExist and
// forwards everything else untouched.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return vfs.ErrNotExist
	}
	return err
}

func (h *FS) OpenFile(path string, flags vfs.OpenFlags) (vfs.File, error) {
	f, err := h.fs.OpenFile(hostPath(path), osFlags(flags), 0o644)
	if err != nil {
		return nil, mapErr(err)
	}
	return &file{File: f}, nil
}

func (h *FS) Metadata(path string) (vfs.Metadata, error) {
	info, err := h.fs.Stat(hostPath(path))
	if err != nil {
		return vfs.Metadata{}, mapErr(err)
	}
	return metadataFromInfo(info), nil
}

func (h *FS) Rename(from, to string) error {
	return mapErr(h.fs.Rename(hostPath(from), hostPath(to)))
}

func (h *FS) Exists(path string) (bool, error) {
	_, err := h.fs.Stat(hostPath(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (h *FS) CreateDir(path string) error {
	return mapErr(h.fs.MkdirAll(hostPath(path), 0o755))
}

func (h *FS) RemoveDir(path string) error {
	path = hostPath(path)
	info, err := h.fs.Stat(path)
	if err != nil {
		return mapErr(err)
	}
	if !info.IsDir() {
		return vfs.ErrNotSupported
	}
	return mapErr(h.fs.RemoveAll(path))
}

func (h *FS) RemoveFile(path string) error {
	return mapErr(h.fs.Remove(hostPath(path)))
}

func (h *FS) ReadDir(path string) ([]vfs.DirEntry, error) {
	path = vfs.Clean(path)
	infos, err := afero.ReadDir(h.fs, hostPath(path))
	if err != nil {
		return nil, mapErr(err)
	}
	entries := make([]vfs.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, vfs.DirEntry{
			Path:     vfs.Join(path, info.Name()),
			Metadata: metadataFromInfo(info),
		})
	}
	return entries, nil
}

func metadataFromInfo(info fs.FileInfo) vfs.Metadata {
	meta := vfs.Metadata{IsFile: !info.IsDir()}
	if meta.IsFile {
		meta.Size = uint64(info.Size())
	}
	return meta
}

// file adapts an afero file handle to vfs.File.
type file struct {
	afero.File
}

func (f *file) Metadata() (vfs.Metadata, error) {
	info, err := f.Stat()
	if err != nil {
		return vfs.Metadata{}, err
	}
	return metadataFromInfo(info), nil
}

func (f *file) Truncate(size uint64) error {
	return f.File.Truncate(int64(size))
}

// tempFile removes itself from the host filesystem when closed.
type tempFile struct {
	*os.File
}

func (f *tempFile) Metadata() (vfs.Metadata, error) {
	info, err := f.Stat()
	if err != nil {
		return vfs.Metadata{}, err
	}
	return metadataFromInfo(info), nil
}

func (f *tempFile) Truncate(size uint64) error {
	return f.File.Truncate(int64(size))
}

func (f *tempFile) Close() error {
	err := f.File.Close()
	if rmErr := os.Remove(f.Name()); err == nil {
		err = rmErr
	}
	return err
}
