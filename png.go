// Package png decodes a PNG image into an uncompressed RGBA pixel
// buffer. It implements the chunk framer, DEFLATE/zlib decompressor,
// and filter/pixel reconstruction pipeline described by the PNG
// specification (ISO/IEC 15948) from scratch, as a layered-stream
// pipeline: a chunk stream feeding a bit stream feeding a Huffman
// decoder.
//
// Command-line parsing, display, ancillary-chunk interpretation,
// interlacing, and Adler-32 verification are out of scope.
package png

import (
	"io"

	"pngdecode/internal/chunk"
	"pngdecode/internal/deflate"
	"pngdecode/internal/errs"
	"pngdecode/internal/logging"
)

var signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Image is the decoded result: width/height in pixels, and Pixels as
// height*width*4 bytes of row-major, top-down R,G,B,A samples.
type Image struct {
	Width  int
	Height int
	Pixels []byte
}

// Decode reads a PNG image from r and returns its decoded RGBA pixel
// buffer, orchestrating signature, IHDR, optional PLTE, IDAT stream,
// IEND in order. Samples of 16-bit images are truncated to their high
// byte, so every output channel is 8-bit.
func Decode(r io.Reader) (*Image, error) {
	if err := checkSignature(r); err != nil {
		return nil, err
	}

	cr := chunk.NewReader(r)

	h, err := readIHDR(cr)
	if err != nil {
		return nil, err
	}
	logging.Debug().
		Uint32("width", h.width).Uint32("height", h.height).
		Uint8("bitDepth", h.bitDepth).Uint8("colourType", h.colourType).
		Uint8("interlace", h.interlace).
		Msg("parsed IHDR")

	palette, typ, err := readOptionalPalette(cr, h)
	if err != nil {
		return nil, err
	}

	if typ != [4]byte{'I', 'D', 'A', 'T'} {
		return nil, errs.Structural("expected IDAT chunk, got %s", typ)
	}

	filtered, err := deflate.Decode(cr)
	if err != nil {
		return nil, err
	}
	if err := cr.FinishChunk(); err != nil {
		return nil, err
	}
	logging.Debug().Int("decompressedBytes", len(filtered)).Msg("inflated IDAT stream")

	_, endType, err := cr.ReadNextCriticalChunkHeader()
	if err != nil {
		return nil, err
	}
	if endType != [4]byte{'I', 'E', 'N', 'D'} {
		return nil, errs.Structural("expected IEND chunk, got %s", endType)
	}
	if err := cr.FinishChunk(); err != nil {
		return nil, err
	}

	if h.colourType == colourIndexed && len(palette) == 0 {
		return nil, errs.Structural("indexed colour image has no palette")
	}
	if h.interlace == 1 {
		return nil, errs.Validation("interlaced images are not supported")
	}

	pixels, err := reconstructImage(filtered, palette, h)
	if err != nil {
		return nil, err
	}

	logging.Debug().Int("width", int(h.width)).Int("height", int(h.height)).Msg("decode complete")
	return &Image{Width: int(h.width), Height: int(h.height), Pixels: pixels}, nil
}

func checkSignature(r io.Reader) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return errs.Structural("truncated PNG signature")
	}
	if buf != signature {
		return errs.Structural("not a PNG file")
	}
	return nil
}

func readIHDR(cr *chunk.Reader) (header, error) {
	length, typ, err := cr.ReadNextCriticalChunkHeader()
	if err != nil {
		return header{}, err
	}
	if typ != [4]byte{'I', 'H', 'D', 'R'} {
		return header{}, errs.Structural("first critical chunk is %s, not IHDR", typ)
	}
	if length != 13 {
		return header{}, errs.Structural("bad IHDR length %d", length)
	}

	var h header
	if h.width, err = cr.ReadU32(); err != nil {
		return header{}, err
	}
	if h.height, err = cr.ReadU32(); err != nil {
		return header{}, err
	}
	bitDepth, err := cr.ReadU8()
	if err != nil {
		return header{}, err
	}
	h.bitDepth = bitDepth
	colourType, err := cr.ReadU8()
	if err != nil {
		return header{}, err
	}
	h.colourType = colourType
	if h.compressionMethod, err = cr.ReadU8(); err != nil {
		return header{}, err
	}
	if h.filterMethod, err = cr.ReadU8(); err != nil {
		return header{}, err
	}
	if h.interlace, err = cr.ReadU8(); err != nil {
		return header{}, err
	}
	if err := h.validate(); err != nil {
		return header{}, err
	}
	if err := cr.FinishChunk(); err != nil {
		return header{}, err
	}
	return h, nil
}

// readOptionalPalette reads a PLTE chunk if present, then returns the
// next critical chunk header (which must end up being IDAT).
func readOptionalPalette(cr *chunk.Reader, h header) (palette []byte, nextType [4]byte, err error) {
	length, typ, err := cr.ReadNextCriticalChunkHeader()
	if err != nil {
		return nil, nextType, err
	}
	if typ == [4]byte{'I', 'E', 'N', 'D'} {
		return nil, nextType, errs.Structural("IEND encountered before any IDAT")
	}
	if typ != [4]byte{'P', 'L', 'T', 'E'} {
		return nil, typ, nil
	}

	if length%3 != 0 || length > 3*(1<<h.bitDepth) {
		return nil, nextType, errs.Validation("invalid palette size %d", length)
	}
	palette = make([]byte, length)
	for i := range palette {
		b, err := cr.ReadU8()
		if err != nil {
			return nil, nextType, err
		}
		palette[i] = b
	}
	if err := cr.FinishChunk(); err != nil {
		return nil, nextType, err
	}

	length, typ, err = cr.ReadNextCriticalChunkHeader()
	if err != nil {
		return nil, nextType, err
	}
	if typ == [4]byte{'I', 'E', 'N', 'D'} {
		return nil, nextType, errs.Structural("IEND encountered before any IDAT")
	}
	if typ == [4]byte{'P', 'L', 'T', 'E'} {
		return nil, nextType, errs.Structural("two PLTE chunks encountered")
	}
	return palette, typ, nil
}
