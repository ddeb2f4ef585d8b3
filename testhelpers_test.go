package png

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"
)

// pngBuilder assembles a well-formed (or deliberately malformed, via
// direct field overrides by the caller) PNG byte stream for tests:
// signature, IHDR, optional PLTE, one or more IDAT chunks, IEND.
type pngBuilder struct {
	buf bytes.Buffer
}

func newPNGBuilder() *pngBuilder {
	b := &pngBuilder{}
	b.buf.Write(signature[:])
	return b
}

func (b *pngBuilder) chunk(typ string, data []byte) *pngBuilder {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	b.buf.Write(lenBuf[:])

	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)

	b.buf.WriteString(typ)
	b.buf.Write(data)

	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc.Sum32())
	b.buf.Write(crcBuf[:])
	return b
}

func (b *pngBuilder) ihdr(width, height uint32, bitDepth, colourType uint8) *pngBuilder {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:4], width)
	binary.BigEndian.PutUint32(data[4:8], height)
	data[8] = bitDepth
	data[9] = colourType
	data[10] = 0 // compression method
	data[11] = 0 // filter method
	data[12] = 0 // interlace
	return b.chunk("IHDR", data)
}

func (b *pngBuilder) idat(data []byte) *pngBuilder {
	return b.chunk("IDAT", data)
}

func (b *pngBuilder) iend() *pngBuilder {
	return b.chunk("IEND", nil)
}

func (b *pngBuilder) bytes() []byte {
	return b.buf.Bytes()
}

// zlibCompress wraps raw with a real zlib stream, as the decoder's
// IDAT payload should contain.
func zlibCompress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// filterNoneRows prepends a 0 (filter type "None") byte to each row of
// width*bpp raw pixel bytes, producing the unfiltered scanline stream
// the DEFLATE payload should decompress to.
func filterNoneRows(rows [][]byte) []byte {
	var out []byte
	for _, row := range rows {
		out = append(out, 0)
		out = append(out, row...)
	}
	return out
}
