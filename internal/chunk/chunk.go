// Package chunk implements a PNG chunk framer: it reads
// length-type-data-CRC records from a seekable byte source, validates
// each chunk's CRC-32, skips ancillary chunks, and presents the
// concatenation of consecutive IDAT chunks as one seamless byte stream.
package chunk

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"pngdecode/internal/errs"
)

// Reader frames a PNG container read from an underlying io.Reader. At
// most one chunk may be open at a time; ReadNextCriticalChunkHeader
// opens one and FinishChunk closes it.
type Reader struct {
	r io.Reader

	open      bool
	typ       [4]byte
	length    uint32
	bytesRead uint32

	crc uint32 // running CRC-32 over the open chunk's type and data

	tmp [8]byte
}

// NewReader wraps r as a chunk framer positioned at the first chunk
// header (i.e. immediately after the 8-byte PNG signature).
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// crcReset restarts the running CRC. crc32.Update applies the all-ones
// initial value and the final inversion itself, so the running value
// starts at 0 and is directly comparable to a stored CRC.
func (c *Reader) crcReset() {
	c.crc = 0
}

func (c *Reader) crcWrite(p []byte) {
	c.crc = crc32.Update(c.crc, crc32.IEEETable, p)
}

// readHeader reads the 4-byte big-endian length and 4-byte type of the
// next chunk header, starting a fresh CRC accumulator over the type
// bytes. It fails if a chunk is already open.
func (c *Reader) readHeader() (length uint32, typ [4]byte, err error) {
	if c.open {
		return 0, typ, errs.Structural("readChunkHeader called with a chunk already open")
	}
	if _, err := io.ReadFull(c.r, c.tmp[:8]); err != nil {
		return 0, typ, wrapEOF(err)
	}
	length = binary.BigEndian.Uint32(c.tmp[:4])
	copy(typ[:], c.tmp[4:8])

	c.crcReset()
	c.crcWrite(typ[:])

	c.typ = typ
	c.length = length
	c.bytesRead = 0
	c.open = true
	return length, typ, nil
}

func isAncillary(typ [4]byte) bool {
	return typ[0]&0x20 != 0
}

// ReadNextCriticalChunkHeader repeatedly reads chunk headers, skipping
// (and discarding the CRC of) any ancillary chunk, until it finds a
// critical one. It returns that chunk's length and type, with the
// chunk left open for the caller to read its data.
func (c *Reader) ReadNextCriticalChunkHeader() (length uint32, typ [4]byte, err error) {
	for {
		length, typ, err = c.readHeader()
		if err != nil {
			return 0, typ, err
		}
		if !isAncillary(typ) {
			return length, typ, nil
		}
		if err := c.skipAncillary(); err != nil {
			return 0, typ, err
		}
	}
}

// skipAncillary discards the current (ancillary) chunk's data and CRC
// without validating the CRC.
func (c *Reader) skipAncillary() error {
	remaining := c.length
	var buf [4096]byte
	for remaining > 0 {
		n := uint32(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(c.r, buf[:n]); err != nil {
			return wrapEOF(err)
		}
		remaining -= n
	}
	if _, err := io.ReadFull(c.r, c.tmp[:4]); err != nil {
		return wrapEOF(err)
	}
	c.open = false
	return nil
}

// ReadU32 reads a big-endian uint32 from within the currently open
// chunk's data, updating the running CRC.
func (c *Reader) ReadU32() (uint32, error) {
	var buf [4]byte
	if err := c.readChunkBytes(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadU8 reads a single byte from within the currently open chunk's
// data, updating the running CRC.
func (c *Reader) ReadU8() (uint8, error) {
	var buf [1]byte
	if err := c.readChunkBytes(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Read reads up to len(p) bytes from within the currently open chunk's
// data. When the chunk is exhausted it transparently verifies that
// chunk's CRC, opens the next chunk (which must be IDAT), skips
// zero-length IDAT chunks at the seam, and keeps reading
// — presenting consecutive IDAT chunks as one logical stream. It
// implements io.Reader so it can be handed directly to the DEFLATE
// decoder.
func (c *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := c.advanceIfExhausted(); err != nil {
		return 0, err
	}
	n := len(p)
	remaining := int(c.length - c.bytesRead)
	if n > remaining {
		n = remaining
	}
	read, err := io.ReadFull(c.r, p[:n])
	c.crcWrite(p[:read])
	c.bytesRead += uint32(read)
	if err != nil {
		return read, wrapEOF(err)
	}
	return read, nil
}

// advanceIfExhausted implements the read-side auto-advance seam: once
// bytesRead reaches length, the current chunk's trailing CRC is
// verified, the next chunk header is read and must be IDAT, and
// zero-length IDAT chunks are skipped.
func (c *Reader) advanceIfExhausted() error {
	for c.bytesRead >= c.length {
		if err := c.finishChunkNoRead(); err != nil {
			return err
		}
		if _, err := io.ReadFull(c.r, c.tmp[:8]); err != nil {
			return wrapEOF(err)
		}
		length := binary.BigEndian.Uint32(c.tmp[:4])
		var typ [4]byte
		copy(typ[:], c.tmp[4:8])
		if typ != [4]byte{'I', 'D', 'A', 'T'} {
			return errs.Structural("unexpected end of image data")
		}
		c.crcReset()
		c.crcWrite(typ[:])
		c.typ = typ
		c.length = length
		c.bytesRead = 0
		c.open = true
	}
	return nil
}

func (c *Reader) readChunkBytes(p []byte) error {
	if !c.open {
		return errs.Structural("read from chunk data with no chunk open")
	}
	if c.bytesRead+uint32(len(p)) > c.length {
		return errs.Structural("read past end of chunk data")
	}
	if _, err := io.ReadFull(c.r, p); err != nil {
		return wrapEOF(err)
	}
	c.crcWrite(p)
	c.bytesRead += uint32(len(p))
	return nil
}

// finishChunkNoRead verifies the trailing CRC of the currently open
// chunk and marks it closed, without reading a new header.
func (c *Reader) finishChunkNoRead() error {
	if !c.open {
		return nil
	}
	if _, err := io.ReadFull(c.r, c.tmp[:4]); err != nil {
		return wrapEOF(err)
	}
	stored := binary.BigEndian.Uint32(c.tmp[:4])
	if c.crc != stored {
		return errs.Structural("CRC mismatch in %s chunk", c.typ)
	}
	c.crcReset()
	c.open = false
	return nil
}

// FinishChunk reads the 4-byte trailing CRC of the currently open
// chunk, verifies it, resets the accumulator, and marks the chunk
// closed.
func (c *Reader) FinishChunk() error {
	return c.finishChunkNoRead()
}

// Length returns the currently open chunk's declared data length.
func (c *Reader) Length() uint32 { return c.length }

func wrapEOF(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errs.Structural("unexpected end of stream")
	}
	return err
}
