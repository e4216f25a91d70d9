// Package mountfs exposes any vfs.FS as a read-only FUSE mount. RPG
// Maker tooling on case-sensitive systems can then see a game's assets
// the way the engine does: case-insensitively, across RTP layers and the
// encrypted archive.
package mountfs

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/rgsskit/rgssfs/vfs"
)

// FS implements the rgssfs FUSE filesystem over a virtual filesystem.
type FS struct {
	vfs     vfs.FS
	mounted time.Time
}

// New wraps source for serving over FUSE.
func New(source vfs.FS) *FS {
	return &FS{vfs: source, mounted: time.Now()}
}

// Root returns the root directory node
func (f *FS) Root() (fs.Node, error) {
	return &Dir{fs: f, path: ""}, nil
}

// Serve mounts the filesystem at mountpoint and serves requests until
// the connection closes or ctx is canceled.
func (f *FS) Serve(ctx context.Context, mountpoint string) error {
	conn, err := fuse.Mount(
		mountpoint,
		fuse.FSName("rgssfs"),
		fuse.Subtype("rgssfs"),
		fuse.ReadOnly(),
	)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan error, 1)
	go func() {
		done <- fs.Serve(conn, f)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		fuse.Unmount(mountpoint)
		<-done
		return ctx.Err()
	}
}

// inode derives a stable inode number from a virtual path.
func inode(path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(path))
	return h.Sum64()
}

// mapErr translates vfs errors to FUSE errnos.
func mapErr(err error) error {
	switch {
	case errors.Is(err, vfs.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, vfs.ErrNotSupported):
		return syscall.EROFS
	default:
		return syscall.EIO
	}
}

// Dir implements both Node and Handle for directories
type Dir struct {
	fs   *FS
	path string
}

// Attr returns directory attributes
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = inode("dir:" + d.path)
	a.Mode = os.ModeDir | 0o555
	a.Mtime = d.fs.mounted
	a.Ctime = d.fs.mounted
	return nil
}

// Lookup resolves file/directory names to nodes
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	path := vfs.Join(d.path, name)
	meta, err := d.fs.vfs.Metadata(path)
	if err != nil {
		return nil, mapErr(err)
	}
	if meta.IsFile {
		return &File{fs: d.fs, path: path, size: meta.Size}, nil
	}
	return &Dir{fs: d.fs, path: path}, nil
}

// ReadDirAll lists directory contents
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := d.fs.vfs.ReadDir(d.path)
	if err != nil {
		return nil, mapErr(err)
	}

	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, entry := range entries {
		name := entry.FileName()
		dirent := fuse.Dirent{
			Inode: inode("dir:" + entry.Path),
			Name:  name,
			Type:  fuse.DT_Dir,
		}
		if entry.Metadata.IsFile {
			dirent.Inode = inode("file:" + entry.Path)
			dirent.Type = fuse.DT_File
		}
		dirents = append(dirents, dirent)
	}
	return dirents, nil
}

// File implements both Node and Handle for files
type File struct {
	fs   *FS
	path string
	size uint64

	mu   sync.Mutex
	data []byte // cached content, loaded on first read
}

// Attr returns file attributes
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = inode("file:" + f.path)
	a.Mode = 0o444
	a.Size = f.size
	a.Mtime = f.fs.mounted
	a.Ctime = f.fs.mounted
	return nil
}

// ReadAll reads the entire file content
func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.data != nil {
		return f.data, nil
	}

	file, err := f.fs.vfs.OpenFile(f.path, vfs.FlagRead)
	if err != nil {
		return nil, mapErr(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, syscall.EIO
	}
	f.data = data
	return data, nil
}
