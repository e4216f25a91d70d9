package archive

import (
	"io"
	"os"

	"github.com/rgsskit/rgssfs/vfs"
)

// File is an open contained file. It holds only its entry and a borrowed
// handle to the archive's shared stream; every read locks the stream,
// seeks to the body, and decodes through the keystream, so reads are
// correct even when other handles moved the cursor in between.
type File struct {
	fs     *FS
	path   string
	entry  Entry
	pos    uint64
	ks     keystream
	closed bool
}

func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	if f.pos >= f.entry.Size {
		return 0, io.EOF
	}
	n := uint64(len(p))
	if remaining := f.entry.Size - f.pos; n > remaining {
		n = remaining
	}

	f.fs.streamMu.Lock()
	_, err := f.fs.stream.Seek(int64(f.entry.BodyOffset+f.pos), io.SeekStart)
	if err == nil {
		_, err = io.ReadFull(f.fs.stream, p[:n])
	}
	f.fs.streamMu.Unlock()
	if err != nil {
		return 0, err
	}

	f.ks.apply(p[:n])
	f.pos += n
	return int(n), nil
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(f.pos) + offset
	case io.SeekEnd:
		pos = int64(f.entry.Size) + offset
	default:
		return 0, os.ErrInvalid
	}
	if pos < 0 {
		return 0, os.ErrInvalid
	}
	f.pos = uint64(pos)
	f.ks.seek(f.pos)
	return pos, nil
}

func (f *File) Write(p []byte) (int, error) {
	return 0, vfs.ErrNotSupported
}

func (f *File) Truncate(size uint64) error {
	return vfs.ErrNotSupported
}

func (f *File) Metadata() (vfs.Metadata, error) {
	return vfs.Metadata{IsFile: true, Size: f.entry.Size}, nil
}

func (f *File) Close() error {
	f.closed = true
	return nil
}
