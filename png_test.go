package png

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTruecolourRoundtrip(t *testing.T) {
	// 2x1 truecolour image, no filtering.
	rows := [][]byte{
		{255, 0, 0, 0, 255, 0}, // red pixel, green pixel
	}
	raw := filterNoneRows(rows)
	data := newPNGBuilder().
		ihdr(2, 1, 8, colourTruecolour).
		idat(zlibCompress(t, raw)).
		iend().
		bytes()

	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 1, img.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 255, 0, 255}, img.Pixels)
}

func TestDecodeGreyscaleRoundtrip(t *testing.T) {
	rows := [][]byte{{0x10, 0xF0}}
	raw := filterNoneRows(rows)
	data := newPNGBuilder().
		ihdr(2, 1, 8, colourGreyscale).
		idat(zlibCompress(t, raw)).
		iend().
		bytes()

	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	want := []byte{0x10, 0x10, 0x10, 255, 0xF0, 0xF0, 0xF0, 255}
	assert.Equal(t, want, img.Pixels)
}

func TestDecodeIndexedRoundtrip(t *testing.T) {
	palette := []byte{
		10, 20, 30,
		40, 50, 60,
	}
	rows := [][]byte{{0b00000001}} // 1 8-bit sample of value 1 (only width=1 needed; rest padding unused)
	raw := filterNoneRows(rows)
	data := newPNGBuilder().
		ihdr(1, 1, 8, colourIndexed).
		chunk("PLTE", palette).
		idat(zlibCompress(t, raw)).
		iend().
		bytes()

	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []byte{40, 50, 60, 255}, img.Pixels)
}

func TestDecodeMultiRowWithSubFilter(t *testing.T) {
	// 2x2 truecolour, row 0 unfiltered, row 1 Sub-filtered relative to
	// itself (bpp=3): store deltas so reconstructRow must add back.
	row0 := []byte{10, 20, 30, 40, 50, 60}
	row1Pixel0 := []byte{5, 5, 5}
	row1Pixel1Delta := []byte{byte(15 - 5), byte(25 - 5), byte(35 - 5)}

	var raw bytes.Buffer
	raw.WriteByte(0) // filter None
	raw.Write(row0)
	raw.WriteByte(1) // filter Sub
	raw.Write(row1Pixel0)
	raw.Write(row1Pixel1Delta)

	data := newPNGBuilder().
		ihdr(2, 2, 8, colourTruecolour).
		idat(zlibCompress(t, raw.Bytes())).
		iend().
		bytes()

	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	want := []byte{
		10, 20, 30, 255, 40, 50, 60, 255,
		5, 5, 5, 255, 15, 25, 35, 255,
	}
	assert.Equal(t, want, img.Pixels)
}

func TestDecodeRejectsTruncatedSignature(t *testing.T) {
	_, err := Decode(bytes.NewReader(signature[:4]))
	require.Error(t, err)
	assert.True(t, Is(err, KindStructural))
}

func TestDecodeRejectsWrongIHDRLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(signature[:])
	b := &pngBuilder{buf: buf}
	b.chunk("IHDR", make([]byte, 12)) // should be 13
	_, err := Decode(bytes.NewReader(b.bytes()))
	require.Error(t, err)
	assert.True(t, Is(err, KindStructural))
}

func TestDecodeRejectsInvalidColourType(t *testing.T) {
	data := newPNGBuilder().ihdr(1, 1, 8, 5).idat(zlibCompress(t, []byte{0, 0})).iend().bytes()
	_, err := Decode(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, Is(err, KindValidation))
}

func TestDecodeRejectsInvalidBitDepthForColourType(t *testing.T) {
	// bit depth 3 is never valid for any colour type.
	data := newPNGBuilder().ihdr(1, 1, 3, colourGreyscale).idat(zlibCompress(t, []byte{0, 0})).iend().bytes()
	_, err := Decode(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, Is(err, KindValidation))
}

func TestDecodeRejectsTwoPLTEChunks(t *testing.T) {
	palette := []byte{1, 2, 3}
	data := newPNGBuilder().
		ihdr(1, 1, 8, colourIndexed).
		chunk("PLTE", palette).
		chunk("PLTE", palette).
		idat(zlibCompress(t, []byte{0, 0})).
		iend().
		bytes()
	_, err := Decode(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, Is(err, KindStructural))
}

func TestDecodeRejectsIENDBeforeIDAT(t *testing.T) {
	data := newPNGBuilder().
		ihdr(1, 1, 8, colourGreyscale).
		iend().
		bytes()
	_, err := Decode(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, Is(err, KindStructural))
}

func TestDecodeRejectsCorruptIDATCRC(t *testing.T) {
	data := newPNGBuilder().
		ihdr(1, 1, 8, colourGreyscale).
		idat(zlibCompress(t, filterNoneRows([][]byte{{0x42}}))).
		iend().
		bytes()
	// Flip the last byte of the IDAT chunk's CRC (the IEND chunk,
	// length(4)+type(4)+crc(4), occupies the final 12 bytes).
	data[len(data)-12-1] ^= 0xFF
	_, err := Decode(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, Is(err, KindStructural))
}

func TestDecodeRejectsReservedBTypeInStream(t *testing.T) {
	// Hand-built zlib stream: header + a BFINAL=1,BTYPE=3 byte.
	body := []byte{0x78, 0x01, 0x07, 0, 0, 0, 0}
	data := newPNGBuilder().
		ihdr(1, 1, 8, colourGreyscale).
		idat(body).
		iend().
		bytes()
	_, err := Decode(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, Is(err, KindDeflate))
}

func TestDecodeRejectsPresetDictionaryFlag(t *testing.T) {
	body := zlibCompress(t, filterNoneRows([][]byte{{0x01}}))
	body[1] |= 0x20
	data := newPNGBuilder().
		ihdr(1, 1, 8, colourGreyscale).
		idat(body).
		iend().
		bytes()
	_, err := Decode(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, Is(err, KindDeflate))
}

func TestDecodeRejectsIndexedWithoutPalette(t *testing.T) {
	data := newPNGBuilder().
		ihdr(1, 1, 8, colourIndexed).
		idat(zlibCompress(t, filterNoneRows([][]byte{{0}}))).
		iend().
		bytes()
	_, err := Decode(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, Is(err, KindStructural))
}

func TestDecodeRejectsInterlacedImages(t *testing.T) {
	b := newPNGBuilder()
	// Build IHDR manually with interlace=1.
	var ihdrData [13]byte
	ihdrData[0], ihdrData[1], ihdrData[2], ihdrData[3] = 0, 0, 0, 1
	ihdrData[4], ihdrData[5], ihdrData[6], ihdrData[7] = 0, 0, 0, 1
	ihdrData[8] = 8
	ihdrData[9] = colourGreyscale
	ihdrData[12] = 1
	b.chunk("IHDR", ihdrData[:])
	b.idat(zlibCompress(t, filterNoneRows([][]byte{{0}})))
	b.iend()
	_, err := Decode(bytes.NewReader(b.bytes()))
	require.Error(t, err)
	assert.True(t, Is(err, KindValidation))
}
