package archive

import (
	"encoding/binary"
	"io"
)

// magicSeed is the keystream seed shared by every v1/v2 archive and the
// fallback base magic for v3.
const magicSeed uint32 = 0xDEADCAFE

// signature is the 7-byte lead-in shared by all archive versions; the
// eighth byte of the header is the version.
var signature = []byte("RGSSAD\x00")

// advanceMagic returns the current keystream word and steps the
// linear-congruential generator. One step per 32-bit header field, and one
// step per obfuscated path byte.
func advanceMagic(magic *uint32) uint32 {
	old := *magic
	*magic = *magic*7 + 3
	return old
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readU32Xor(r io.Reader, key uint32) (uint32, error) {
	value, err := readU32(r)
	if err != nil {
		return 0, err
	}
	return value ^ key, nil
}

func writeU32(w io.Writer, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	_, err := w.Write(buf[:])
	return err
}

// keystream is the per-byte XOR sequence used for file bodies. Byte p of
// the stream is XORed with byte p%4 of the keystream word, and the word
// advances by one LCG step after every fourth byte. The state is a pure
// function of (seed, pos), which is what makes contained files seekable.
type keystream struct {
	seed  uint32
	magic uint32
	pos   uint64
}

func newKeystream(seed uint32) keystream {
	return keystream{seed: seed, magic: seed}
}

// apply transforms buf in place.
func (k *keystream) apply(buf []byte) {
	for i := range buf {
		buf[i] ^= byte(k.magic >> (8 * (k.pos % 4)))
		k.pos++
		if k.pos%4 == 0 {
			k.magic = k.magic*7 + 3
		}
	}
}

// seek repositions the keystream to an absolute byte offset.
func (k *keystream) seek(pos uint64) {
	k.magic = k.seed
	for steps := pos / 4; steps > 0; steps-- {
		k.magic = k.magic*7 + 3
	}
	k.pos = pos
}

// xorCopy streams exactly size bytes from r to w through the keystream
// seeded with seed, without buffering the whole body.
func xorCopy(w io.Writer, r io.Reader, size uint64, seed uint32) error {
	ks := newKeystream(seed)
	buf := make([]byte, 32*1024)
	remaining := size
	for remaining > 0 {
		n := uint64(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			return err
		}
		ks.apply(buf[:n])
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}
