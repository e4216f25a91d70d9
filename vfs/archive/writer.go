package archive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"math/rand/v2"

	"github.com/rgsskit/rgssfs/vfs"
	"github.com/rgsskit/rgssfs/vfs/host"
)

// Source is one file fed to FromFiles. Reader must yield at least Size
// bytes; the writer consumes exactly Size of them.
type Source struct {
	Path   string
	Size   uint32
	Reader io.Reader
}

// FromFiles builds a fresh archive of the given version on stream from a
// sequence of files, and returns the indexed filesystem over it. Bodies
// are streamed through the XOR transform without whole-file buffering;
// building a v3 archive additionally spools bodies to one scratch temp
// file because body offsets are unknown until every file is enumerated.
//
// Any error aborts the whole write and the stream contents must be
// discarded: a partially written archive is indistinguishable from a
// corrupt one. The context is checked between files so a detached
// archive-creation task can be abandoned cooperatively.
func FromFiles(ctx context.Context, stream vfs.File, version byte, files iter.Seq2[Source, error]) (*FS, error) {
	if err := stream.Truncate(0); err != nil {
		return nil, err
	}
	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	writer := bufio.NewWriter(stream)
	if _, err := writer.Write(signature); err != nil {
		return nil, err
	}
	if err := writer.WriteByte(version); err != nil {
		return nil, err
	}

	fs := &FS{
		index:     vfs.NewTrie[Entry](),
		stream:    stream,
		version:   version,
		baseMagic: magicSeed,
	}

	var err error
	switch version {
	case 1, 2:
		err = fs.writeClassic(ctx, writer, files)
	case 3:
		err = fs.writeV3(ctx, stream, writer, files)
	default:
		return nil, fmt.Errorf("version byte %d: %w", version, vfs.ErrInvalidArchiveVersion)
	}
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// writeClassic emits the interleaved v1/v2 layout. The keystream advances
// across the whole archive; each body is encoded with a copy of the
// keystream word captured after its size field, which is exactly the
// state the scanner will capture on read-back.
func (fs *FS) writeClassic(ctx context.Context, writer *bufio.Writer, files iter.Seq2[Source, error]) error {
	magic := magicSeed
	headerOffset := uint64(8)

	for src, err := range files {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		path := vfs.Clean(src.Path)
		headerSize := uint64(len(path)) + 8

		if err := writeU32(writer, uint32(len(path))^advanceMagic(&magic)); err != nil {
			return annotateWrite(err, path)
		}
		if err := writeClassicPath(writer, path, &magic); err != nil {
			return annotateWrite(err, path)
		}
		if err := writeU32(writer, src.Size^advanceMagic(&magic)); err != nil {
			return annotateWrite(err, path)
		}
		if err := xorCopy(writer, src.Reader, uint64(src.Size), magic); err != nil {
			return annotateWrite(err, path)
		}

		fs.index.CreateFile(path, Entry{
			Size:         uint64(src.Size),
			HeaderOffset: headerOffset,
			BodyOffset:   headerOffset + headerSize,
			StartMagic:   magic,
		})
		headerOffset += headerSize + uint64(src.Size)
	}
	return writer.Flush()
}

// writeV3 emits the segregated v3 layout: header table first with zeroed
// offset fields, bodies spooled to a scratch file, then the terminator,
// the bodies, and finally the offsets backpatched once the header length
// is known.
func (fs *FS) writeV3(ctx context.Context, stream vfs.File, writer *bufio.Writer, files iter.Seq2[Source, error]) error {
	tmp, err := host.TempFile()
	if err != nil {
		return err
	}
	defer tmp.Close()
	bodies := bufio.NewWriter(tmp)

	baseMagic := rand.Uint32()
	fs.baseMagic = baseMagic
	// The stored seed is the pre-image of the real base magic under
	// seed*9+3; 954437177 is the modular inverse of 9 mod 2^32.
	if err := writeU32(writer, (baseMagic-3)*954437177); err != nil {
		return err
	}

	type pending struct {
		path  string
		entry Entry
	}
	var entries []pending

	headerOffset := uint64(12)
	bodyOffset := uint64(0)
	for src, err := range files {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		path := vfs.Clean(src.Path)
		entryMagic := rand.Uint32()

		// Offset field is patched after the header size is known.
		if err := writeU32(writer, 0); err != nil {
			return annotateWrite(err, path)
		}
		if err := writeU32(writer, src.Size^baseMagic); err != nil {
			return annotateWrite(err, path)
		}
		if err := writeU32(writer, entryMagic^baseMagic); err != nil {
			return annotateWrite(err, path)
		}
		if err := writeU32(writer, uint32(len(path))^baseMagic); err != nil {
			return annotateWrite(err, path)
		}
		if err := writeV3Path(writer, path, baseMagic); err != nil {
			return annotateWrite(err, path)
		}
		if err := xorCopy(bodies, src.Reader, uint64(src.Size), entryMagic); err != nil {
			return annotateWrite(err, path)
		}

		entries = append(entries, pending{path, Entry{
			Size:         uint64(src.Size),
			HeaderOffset: headerOffset,
			BodyOffset:   bodyOffset,
			StartMagic:   entryMagic,
		}})
		headerOffset += uint64(len(path)) + 16
		bodyOffset += uint64(src.Size)
	}

	// Terminator: an offset field that decodes to zero.
	if err := writeU32(writer, baseMagic); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	if err := bodies.Flush(); err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.Copy(stream, tmp); err != nil {
		return err
	}

	headerSize := headerOffset + 4
	for _, p := range entries {
		p.entry.BodyOffset += headerSize
		if _, err := stream.Seek(int64(p.entry.HeaderOffset), io.SeekStart); err != nil {
			return annotateWrite(err, p.path)
		}
		if err := writeU32(stream, uint32(p.entry.BodyOffset)^baseMagic); err != nil {
			return annotateWrite(err, p.path)
		}
		fs.index.CreateFile(p.path, p.entry)
	}
	return nil
}

// writeClassicPath emits v1/v2 path bytes: forward slashes become
// back-slashes on disk, each byte XORed with one keystream step.
func writeClassicPath(w io.Writer, path string, magic *uint32) error {
	buf := make([]byte, len(path))
	for i := 0; i < len(path); i++ {
		b := path[i]
		if b == '/' {
			b = '\\'
		}
		buf[i] = b ^ byte(advanceMagic(magic))
	}
	_, err := w.Write(buf)
	return err
}

// writeV3Path emits v3 path bytes keyed by the rotated base magic.
func writeV3Path(w io.Writer, path string, baseMagic uint32) error {
	buf := make([]byte, len(path))
	for i := 0; i < len(path); i++ {
		b := path[i]
		if b == '/' {
			b = '\\'
		}
		buf[i] = b ^ byte(baseMagic>>(8*(i%4)))
	}
	_, err := w.Write(buf)
	return err
}

func annotateWrite(err error, path string) error {
	return fmt.Errorf("writing archive entry %q: %w", path, err)
}
