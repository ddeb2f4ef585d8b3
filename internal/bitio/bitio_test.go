package bitio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBitLSBFirst(t *testing.T) {
	// 0b1011_0001 -> LSB-first bit sequence: 1,0,0,0,1,1,0,1
	r := NewReader(bytes.NewReader([]byte{0b10110001}))
	want := []bool{true, false, false, false, true, true, false, true}
	for i, w := range want {
		got, err := r.ReadBit()
		require.NoError(t, err)
		assert.Equal(t, w, got, "bit %d", i)
	}
}

func TestReadStraddlesBytes(t *testing.T) {
	// Three bytes; read widths that straddle byte boundaries.
	r := NewReader(bytes.NewReader([]byte{0xFF, 0x00, 0xAA}))
	v, err := r.Read(12)
	require.NoError(t, err)
	// low 8 bits of byte0 (0xFF) then low 4 bits of byte1 (0x0)
	assert.Equal(t, uint16(0x0FF), v)

	v, err = r.Read(12)
	require.NoError(t, err)
	// remaining 4 bits of byte1 (0x0) then all 8 bits of byte2 (0xAA)
	assert.Equal(t, uint16(0xAA0), v)
}

func TestAlignToByte(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0x55}))
	_, err := r.Read(3)
	require.NoError(t, err)
	r.AlignToByte()
	v, err := r.Read(8)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x55), v)
}

func TestReadRejectsOutOfRangeWidth(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 0, 0}))
	_, err := r.Read(0)
	assert.Error(t, err)
	_, err = r.Read(17)
	assert.Error(t, err)
}
