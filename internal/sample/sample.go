// Package sample implements a fixed-width sample bit reader: MSB-first
// reads of 1/2/4/8/16-bit samples from a decompressed byte slice, with
// two output modes (scaled to 8-bit, or raw for palette indices).
package sample

import "pngdecode/internal/errs"

// Reader reads fixed-width samples MSB-first from an underlying byte
// slice.
type Reader struct {
	data      []byte
	pos       int // next byte index to consume
	bitDepth  uint
	scale     bool
	cur       byte
	remaining uint
}

// NewReader returns a sample reader over data with the given bit
// depth. When scale is true, sub-byte samples are scaled up to 8-bit
// (non-indexed images); when false, they are returned raw/right-aligned
// for use as palette indices. 16-bit samples are truncated to their
// high byte in both modes.
func NewReader(data []byte, bitDepth uint, scale bool) *Reader {
	return &Reader{data: data, bitDepth: bitDepth, scale: scale}
}

// maxSampleValue returns 2^bitDepth - 1, the largest representable
// unscaled sample.
func maxSampleValue(bitDepth uint) uint {
	return (uint(1) << bitDepth) - 1
}

// Get returns the next sample.
func (r *Reader) Get() (byte, error) {
	switch r.bitDepth {
	case 16:
		if r.pos+2 > len(r.data) {
			return 0, errs.Structural("sample reader ran past end of scanline")
		}
		hi := r.data[r.pos]
		r.pos += 2 // 16-bit samples are truncated to their high byte
		return hi, nil
	case 8:
		if r.pos >= len(r.data) {
			return 0, errs.Structural("sample reader ran past end of scanline")
		}
		v := r.data[r.pos]
		r.pos++
		return v, nil
	default: // 1, 2, 4
		if r.remaining == 0 {
			if r.pos >= len(r.data) {
				return 0, errs.Structural("sample reader ran past end of scanline")
			}
			r.cur = r.data[r.pos]
			r.pos++
			r.remaining = 8
		}
		r.remaining -= r.bitDepth
		raw := (r.cur >> r.remaining) & byte(maxSampleValue(r.bitDepth))
		if !r.scale {
			return raw, nil
		}
		// PNG scaling: sample * 0xFF / (2^n - 1).
		max := maxSampleValue(r.bitDepth)
		return byte(uint(raw) * 255 / max), nil
	}
}
