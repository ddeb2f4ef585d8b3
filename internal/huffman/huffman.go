// Package huffman builds and decodes canonical prefix codes for
// DEFLATE (RFC 1951 §3.2.2). The decoder is a flattened array arena of
// Leaf|Branch nodes rather than a heap of pointer nodes, indexed by
// small integers instead of pointers.
package huffman

import (
	"pngdecode/internal/bitio"
	"pngdecode/internal/errs"
)

const maxCodeLength = 15

// node is either a leaf (symbol >= 0) or a branch indexing into the
// same arena for its two children.
type node struct {
	symbol      int32 // -1 if this is a branch
	left, right int32
}

// Tree is a canonical Huffman decoder built from a vector of per-symbol
// code lengths.
type Tree struct {
	nodes []node // nodes[0] is the root
}

// Build constructs a canonical Huffman tree from codeLengths, where
// codeLengths[i] == 0 means symbol i is absent. It follows RFC 1951
// §3.2.2: bin lengths, assign next_code per length, then assign codes
// to symbols in ascending index order.
func Build(codeLengths []int) (*Tree, error) {
	var count [maxCodeLength + 1]int
	maxLen := 0
	for _, l := range codeLengths {
		if l < 0 || l > maxCodeLength {
			return nil, errs.Deflate("invalid Huffman code length %d", l)
		}
		if l > 0 {
			count[l]++
			if l > maxLen {
				maxLen = l
			}
		}
	}

	t := &Tree{nodes: []node{{symbol: -1, left: -1, right: -1}}}
	if maxLen == 0 {
		return t, nil
	}

	var nextCode [maxCodeLength + 2]int
	code := 0
	for length := 1; length <= maxLen; length++ {
		code = (code + count[length-1]) << 1
		nextCode[length] = code
	}

	for symbol, length := range codeLengths {
		if length == 0 {
			continue
		}
		if err := t.insert(nextCode[length], length, int32(symbol)); err != nil {
			return nil, err
		}
		nextCode[length]++
	}
	return t, nil
}

// insert walks (or extends) the arena from the root, MSB-first within
// the code's length, placing symbol at the resulting leaf.
func (t *Tree) insert(code, length int, symbol int32) error {
	cur := int32(0)
	for i := length - 1; i >= 0; i-- {
		bit := (code >> uint(i)) & 1
		if t.nodes[cur].symbol != -1 {
			return errs.Deflate("Huffman code table is over-subscribed")
		}
		next := t.nodes[cur].left
		if bit == 1 {
			next = t.nodes[cur].right
		}
		if next == -1 {
			t.nodes = append(t.nodes, node{symbol: -1, left: -1, right: -1})
			next = int32(len(t.nodes) - 1)
			if bit == 0 {
				t.nodes[cur].left = next
			} else {
				t.nodes[cur].right = next
			}
		}
		cur = next
	}
	if t.nodes[cur].symbol != -1 || t.nodes[cur].left != -1 || t.nodes[cur].right != -1 {
		return errs.Deflate("Huffman code table is over-subscribed")
	}
	t.nodes[cur].symbol = symbol
	return nil
}

// Decode walks bits from r MSB-first within each code (0 goes left, 1
// goes right) until it reaches a leaf, returning that leaf's symbol.
func (t *Tree) Decode(r *bitio.Reader) (int32, error) {
	if len(t.nodes) == 0 {
		return 0, errs.Deflate("empty Huffman tree")
	}
	cur := int32(0)
	for {
		n := &t.nodes[cur]
		if n.symbol != -1 {
			return n.symbol, nil
		}
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		var next int32
		if bit {
			next = n.right
		} else {
			next = n.left
		}
		if next == -1 {
			return 0, errs.Deflate("Huffman code not found in table")
		}
		cur = next
	}
}
