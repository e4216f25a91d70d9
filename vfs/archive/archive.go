package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rgsskit/rgssfs/vfs"
)

// Entry locates one file inside an archive. Entries are produced while the
// header is scanned and never change afterwards.
type Entry struct {
	// Size is the length of the file body in bytes.
	Size uint64
	// HeaderOffset is the position of the file's header record.
	HeaderOffset uint64
	// BodyOffset is the position of the first body byte.
	BodyOffset uint64
	// StartMagic seeds the body keystream: the archive-wide keystream
	// state captured after the size field for v1/v2, or the per-entry
	// random magic for v3.
	StartMagic uint32
}

// FS is an archive opened over a single seekable stream, exposed through
// the rgssfs storage contract. The index is shared behind a read/write
// lock; the stream cursor is global state and is guarded by its own lock,
// so reads from multiple open contained files serialize.
type FS struct {
	mu    sync.RWMutex
	index *vfs.Trie[Entry]

	streamMu sync.Mutex
	stream   vfs.File

	version   byte
	baseMagic uint32
}

// New indexes an existing archive. The stream must remain open for the
// lifetime of the returned filesystem. The scan is a single linear pass
// over the header with one seek past each body for v1/v2.
func New(stream vfs.File) (*FS, error) {
	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	reader := bufio.NewReader(stream)

	version, err := readSignature(reader)
	if err != nil {
		return nil, err
	}

	fs := &FS{
		index:     vfs.NewTrie[Entry](),
		stream:    stream,
		version:   version,
		baseMagic: magicSeed,
	}

	switch version {
	case 1, 2:
		err = fs.scanClassic(stream, reader)
	case 3:
		err = fs.scanV3(reader)
	default:
		return nil, fmt.Errorf("version byte %d: %w", version, vfs.ErrInvalidArchiveVersion)
	}
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func readSignature(r io.Reader) (byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, fmt.Errorf("reading archive header: %w", err)
	}
	for i, b := range signature {
		if header[i] != b {
			return 0, vfs.ErrInvalidHeader
		}
	}
	return header[7], nil
}

// scanClassic builds the index of a v1/v2 archive. Per-file headers are
// interleaved with bodies, so each record costs one seek past the body.
// The scan ends at the first length field that hits EOF.
func (fs *FS) scanClassic(stream vfs.File, reader *bufio.Reader) error {
	magic := magicSeed
	offset := uint64(8)

	for index := 0; ; index++ {
		pathLen, err := readU32Xor(reader, advanceMagic(&magic))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return annotate(err, index, offset)
		}

		path := make([]byte, pathLen)
		if _, err := io.ReadFull(reader, path); err != nil {
			return annotate(err, index, offset)
		}
		decodeClassicPath(path, &magic)

		size, err := readU32Xor(reader, advanceMagic(&magic))
		if err != nil {
			return annotate(err, index, offset)
		}

		entry := Entry{
			Size:         uint64(size),
			HeaderOffset: offset,
			BodyOffset:   offset + uint64(pathLen) + 8,
			StartMagic:   magic,
		}
		fs.index.CreateFile(string(path), entry)

		offset = entry.BodyOffset + entry.Size
		if _, err := stream.Seek(int64(offset), io.SeekStart); err != nil {
			return annotate(err, index, offset)
		}
		reader.Reset(stream)
	}
}

// scanV3 builds the index of a v3 archive. Headers are fixed-size records
// terminated by a zero body offset; bodies are segregated after the
// header, so no seeking is needed during the scan.
func (fs *FS) scanV3(reader *bufio.Reader) error {
	seedRaw, err := readU32(reader)
	if err != nil {
		return annotate(err, 0, 8)
	}
	fs.baseMagic = seedRaw*9 + 3
	offset := uint64(12)

	for index := 0; ; index++ {
		bodyOffset, err := readU32Xor(reader, fs.baseMagic)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return annotate(err, index, offset)
		}
		if bodyOffset == 0 {
			return nil
		}

		size, err := readU32Xor(reader, fs.baseMagic)
		if err != nil {
			return annotate(err, index, offset)
		}
		entryMagic, err := readU32Xor(reader, fs.baseMagic)
		if err != nil {
			return annotate(err, index, offset)
		}
		pathLen, err := readU32Xor(reader, fs.baseMagic)
		if err != nil {
			return annotate(err, index, offset)
		}

		path := make([]byte, pathLen)
		if _, err := io.ReadFull(reader, path); err != nil {
			return annotate(err, index, offset)
		}
		decodeV3Path(path, fs.baseMagic)

		fs.index.CreateFile(string(path), Entry{
			Size:         uint64(size),
			HeaderOffset: offset,
			BodyOffset:   uint64(bodyOffset),
			StartMagic:   entryMagic,
		})
		offset += 16 + uint64(pathLen)
	}
}

// annotate records which entry and offset a parse failure happened at.
// It never changes the error kind.
func annotate(err error, index int, offset uint64) error {
	return fmt.Errorf("archive entry %d at offset %d: %w", index, offset, err)
}

// decodeClassicPath deobfuscates v1/v2 path bytes in place, normalizing
// back-slashes to forward slashes. The keystream advances once per byte.
func decodeClassicPath(path []byte, magic *uint32) {
	for i := range path {
		b := path[i] ^ byte(advanceMagic(magic))
		if b == '\\' {
			b = '/'
		}
		path[i] = b
	}
}

// decodeV3Path deobfuscates v3 path bytes in place. v3 has no evolving
// keystream; byte i uses the base magic rotated by the byte position.
func decodeV3Path(path []byte, baseMagic uint32) {
	for i := range path {
		b := path[i] ^ byte(baseMagic>>(8*(i%4)))
		if b == '\\' {
			b = '/'
		}
		path[i] = b
	}
}

// Version reports the archive's on-disk revision.
func (fs *FS) Version() byte {
	return fs.version
}

// Validate checks that every indexed entry lies within the bounds of the
// underlying stream. A failure means the archive is truncated or the
// header is lying about offsets.
func (fs *FS) Validate() error {
	fs.streamMu.Lock()
	meta, err := fs.stream.Metadata()
	fs.streamMu.Unlock()
	if err != nil {
		return err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()
	var bad error
	fs.index.WalkFiles("", func(path string, entry Entry) bool {
		if entry.BodyOffset+entry.Size > meta.Size {
			bad = fmt.Errorf("entry %q: body [%d, %d) exceeds archive length %d: %w",
				path, entry.BodyOffset, entry.BodyOffset+entry.Size, meta.Size, vfs.ErrInvalidHeader)
			return false
		}
		return true
	})
	return bad
}

// OpenFile opens a contained file for reading. The returned handle
// decodes lazily, sharing the archive stream with every other open
// handle. Archives are not editable in place, so any write flag is
// rejected.
func (fs *FS) OpenFile(path string, flags vfs.OpenFlags) (vfs.File, error) {
	if flags.Has(vfs.FlagWrite) || flags.Has(vfs.FlagCreate) || flags.Has(vfs.FlagTruncate) {
		return nil, vfs.ErrNotSupported
	}
	path = vfs.Clean(path)

	fs.mu.RLock()
	entry, ok := fs.index.GetFile(path)
	fs.mu.RUnlock()
	if !ok {
		return nil, vfs.ErrNotExist
	}
	return &File{
		fs:    fs,
		path:  path,
		entry: entry,
		ks:    newKeystream(entry.StartMagic),
	}, nil
}

func (fs *FS) Metadata(path string) (vfs.Metadata, error) {
	path = vfs.Clean(path)
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if entry, ok := fs.index.GetFile(path); ok {
		return vfs.Metadata{IsFile: true, Size: entry.Size}, nil
	}
	if n, ok := fs.index.DirLen(path); ok {
		return vfs.Metadata{IsFile: false, Size: uint64(n)}, nil
	}
	return vfs.Metadata{}, vfs.ErrNotExist
}

func (fs *FS) Exists(path string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.index.Contains(vfs.Clean(path)), nil
}

func (fs *FS) ReadDir(path string) ([]vfs.DirEntry, error) {
	path = vfs.Clean(path)
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	listed, ok := fs.index.ListDir(path)
	if !ok {
		return nil, vfs.ErrNotExist
	}
	entries := make([]vfs.DirEntry, 0, len(listed))
	for _, e := range listed {
		entryPath := vfs.Join(path, e.Name)
		meta := vfs.Metadata{IsFile: e.IsFile, Size: e.Value.Size}
		if !e.IsFile {
			n, _ := fs.index.DirLen(entryPath)
			meta.Size = uint64(n)
		}
		entries = append(entries, vfs.DirEntry{Path: entryPath, Metadata: meta})
	}
	return entries, nil
}

// Archives are rebuilt wholesale through FromFiles; in-place structural
// edits are not part of the contract.

func (fs *FS) Rename(from, to string) error { return vfs.ErrNotSupported }

func (fs *FS) CreateDir(path string) error { return vfs.ErrNotSupported }

func (fs *FS) RemoveDir(path string) error { return vfs.ErrNotSupported }

func (fs *FS) RemoveFile(path string) error { return vfs.ErrNotSupported }
