// Package deflate implements a zlib/DEFLATE decompressor: a zlib
// header, then a sequence of stored/fixed-Huffman/dynamic-Huffman
// blocks, with LZ77 back-references resolved against the growing
// output buffer.
package deflate

import (
	"io"

	"pngdecode/internal/bitio"
	"pngdecode/internal/errs"
	"pngdecode/internal/huffman"
)

// codeLengthOrder is the permutation of code-length alphabet positions
// used by dynamic blocks (RFC 1951 §3.2.7).
var codeLengthOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

var fixedLiteralTree *huffman.Tree

func init() {
	lengths := make([]int, 288)
	for i := 0; i < 144; i++ {
		lengths[i] = 8
	}
	for i := 144; i < 256; i++ {
		lengths[i] = 9
	}
	for i := 256; i < 280; i++ {
		lengths[i] = 7
	}
	for i := 280; i < 288; i++ {
		lengths[i] = 8
	}
	tree, err := huffman.Build(lengths)
	if err != nil {
		panic("deflate: fixed literal tree failed to build: " + err.Error())
	}
	fixedLiteralTree = tree
}

// decodeLength implements the length-code table (codes 257..285).
func decodeLength(r *bitio.Reader, code int32) (int, error) {
	switch {
	case code >= 257 && code <= 264:
		return int(code) - 254, nil
	case code >= 265 && code <= 268:
		extra, err := r.Read(1)
		if err != nil {
			return 0, err
		}
		return 11 + int(code-265)*2 + int(extra), nil
	case code >= 269 && code <= 272:
		extra, err := r.Read(2)
		if err != nil {
			return 0, err
		}
		return 19 + int(code-269)*4 + int(extra), nil
	case code >= 273 && code <= 276:
		extra, err := r.Read(3)
		if err != nil {
			return 0, err
		}
		return 35 + int(code-273)*8 + int(extra), nil
	case code >= 277 && code <= 280:
		extra, err := r.Read(4)
		if err != nil {
			return 0, err
		}
		return 67 + int(code-277)*16 + int(extra), nil
	case code >= 281 && code <= 284:
		extra, err := r.Read(5)
		if err != nil {
			return 0, err
		}
		return 131 + int(code-281)*32 + int(extra), nil
	case code == 285:
		return 258, nil
	default:
		return 0, errs.Deflate("invalid length code %d", code)
	}
}

// decodeDistance implements the distance-code table.
func decodeDistance(r *bitio.Reader, code int32) (int, error) {
	switch {
	case code >= 0 && code <= 3:
		return 1 + int(code), nil
	case code >= 4 && code <= 29:
		extraBits := uint(code/2 - 1)
		base := (1 << extraBits) * (int(code) - 2*int(extraBits)) + 1
		extra, err := r.Read(extraBits)
		if err != nil {
			return 0, err
		}
		return base + int(extra), nil
	default:
		return 0, errs.Deflate("invalid distance code %d", code)
	}
}

// readDynamicTrees reads the HLIT/HDIST/HCLEN header of a dynamic
// block and builds its literal/length and distance Huffman trees.
func readDynamicTrees(r *bitio.Reader) (literal, distance *huffman.Tree, err error) {
	hlitBits, err := r.Read(5)
	if err != nil {
		return nil, nil, err
	}
	hlit := int(hlitBits) + 257
	hdistBits, err := r.Read(5)
	if err != nil {
		return nil, nil, err
	}
	hdist := int(hdistBits) + 1
	hclenBits, err := r.Read(4)
	if err != nil {
		return nil, nil, err
	}
	hclen := int(hclenBits) + 4

	codeLengthLengths := make([]int, 19)
	for i := 0; i < hclen; i++ {
		v, err := r.Read(3)
		if err != nil {
			return nil, nil, err
		}
		codeLengthLengths[codeLengthOrder[i]] = int(v)
	}
	codeLengthTree, err := huffman.Build(codeLengthLengths)
	if err != nil {
		return nil, nil, err
	}

	combined := make([]int, 0, hlit+hdist)
	for len(combined) < hlit+hdist {
		sym, err := codeLengthTree.Decode(r)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case sym <= 15:
			combined = append(combined, int(sym))
		case sym == 16:
			if len(combined) == 0 {
				return nil, nil, errs.Deflate("repeat code 16 with no previous length")
			}
			extra, err := r.Read(2)
			if err != nil {
				return nil, nil, err
			}
			repeat := 3 + int(extra)
			prev := combined[len(combined)-1]
			for i := 0; i < repeat; i++ {
				combined = append(combined, prev)
			}
		case sym == 17:
			extra, err := r.Read(3)
			if err != nil {
				return nil, nil, err
			}
			repeat := 3 + int(extra)
			for i := 0; i < repeat; i++ {
				combined = append(combined, 0)
			}
		case sym == 18:
			extra, err := r.Read(7)
			if err != nil {
				return nil, nil, err
			}
			repeat := 11 + int(extra)
			for i := 0; i < repeat; i++ {
				combined = append(combined, 0)
			}
		default:
			return nil, nil, errs.Deflate("invalid code length symbol %d", sym)
		}
	}
	if len(combined) != hlit+hdist {
		return nil, nil, errs.Deflate("dynamic code length vector overran HLIT+HDIST")
	}

	literal, err = huffman.Build(combined[:hlit])
	if err != nil {
		return nil, nil, err
	}
	distance, err = huffman.Build(combined[hlit:])
	if err != nil {
		return nil, nil, err
	}
	return literal, distance, nil
}

// Decode consumes a zlib stream (2-byte header, DEFLATE blocks, 4-byte
// trailer) from r and returns the fully decompressed byte vector.
func Decode(r io.Reader) ([]byte, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errs.DeflateWrap(err, "reading zlib header")
	}
	if header[1]&0x20 != 0 {
		return nil, errs.Deflate("zlib preset dictionary not supported")
	}

	bitReader := bitio.NewReader(r)
	var out []byte

	for {
		finalBit, err := bitReader.ReadBit()
		if err != nil {
			return nil, err
		}
		btypeBits, err := bitReader.Read(2)
		if err != nil {
			return nil, err
		}
		btype := int(btypeBits)

		switch btype {
		case 0: // stored
			bitReader.AlignToByte()
			var lenBuf [4]byte
			if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
				return nil, errs.DeflateWrap(err, "reading stored block length")
			}
			length := int(lenBuf[0]) | int(lenBuf[1])<<8
			nlength := int(lenBuf[2]) | int(lenBuf[3])<<8
			if length != (^nlength)&0xFFFF {
				return nil, errs.Deflate("stored block LEN/NLEN mismatch")
			}
			start := len(out)
			out = append(out, make([]byte, length)...)
			if _, err := io.ReadFull(r, out[start:]); err != nil {
				return nil, errs.DeflateWrap(err, "reading stored block data")
			}

		case 1, 2: // fixed or dynamic Huffman
			var literalTree, distanceTree *huffman.Tree
			if btype == 1 {
				literalTree = fixedLiteralTree
				distanceTree = nil
			} else {
				literalTree, distanceTree, err = readDynamicTrees(bitReader)
				if err != nil {
					return nil, err
				}
			}
			out, err = decodeBlockBody(bitReader, literalTree, distanceTree, out)
			if err != nil {
				return nil, err
			}

		default:
			return nil, errs.Deflate("reserved BTYPE 3 encountered")
		}

		if finalBit {
			break
		}
	}

	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return nil, errs.DeflateWrap(err, "reading Adler-32 trailer")
	}
	return out, nil
}

// decodeBlockBody decodes literal/length/distance symbols until an
// end-of-block marker, appending to out and resolving LZ77 copies
// against out as it grows.
func decodeBlockBody(r *bitio.Reader, literalTree, distanceTree *huffman.Tree, out []byte) ([]byte, error) {
	for {
		sym, err := literalTree.Decode(r)
		if err != nil {
			return nil, err
		}
		switch {
		case sym < 256:
			out = append(out, byte(sym))
		case sym == 256:
			return out, nil
		default:
			length, err := decodeLength(r, sym)
			if err != nil {
				return nil, err
			}
			var distCode int32
			if distanceTree == nil {
				// Fixed blocks give every distance code the same
				// length (5), so no Huffman tree is built for them;
				// but DEFLATE still packs each code's bits MSB-first,
				// while Read accumulates LSB-first. The
				// raw 5-bit read must be bit-reversed to recover the
				// code index, mirroring the stdlib flate decoder's
				// bits.Reverse8 treatment of this same case.
				raw, err := r.Read(5)
				if err != nil {
					return nil, err
				}
				distCode = int32(reverseBits(uint8(raw), 5))
			} else {
				distCode, err = distanceTree.Decode(r)
				if err != nil {
					return nil, err
				}
			}
			distance, err := decodeDistance(r, distCode)
			if err != nil {
				return nil, err
			}
			if distance <= 0 || distance > len(out) {
				return nil, errs.Deflate("invalid distance %d (output length %d)", distance, len(out))
			}
			out, err = copyBackref(out, distance, length)
			if err != nil {
				return nil, err
			}
		}
	}
}

// reverseBits reverses the low n bits of v.
func reverseBits(v uint8, n uint) uint8 {
	var out uint8
	for i := uint(0); i < n; i++ {
		out = (out << 1) | (v & 1)
		v >>= 1
	}
	return out
}

// copyBackref appends length bytes to out, each copied from
// out[len(out)-distance], reading the source positions from the
// growing output (so length > distance produces a repeating pattern).
// A block-copy fast path is used only when it is safe (length <=
// distance, i.e. source and destination ranges cannot overlap);
// otherwise a byte-at-a-time loop is used.
func copyBackref(out []byte, distance, length int) ([]byte, error) {
	start := len(out) - distance
	if length <= distance {
		out = append(out, out[start:start+length]...)
		return out, nil
	}
	out = append(out, make([]byte, length)...)
	dst := len(out) - length
	for i := 0; i < length; i++ {
		out[dst+i] = out[start+i]
	}
	return out, nil
}
