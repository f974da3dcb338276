package merkletree

import "hash"

// Domain separation prefixes: 0x00 before leaf bytes, 0x01 before
// the concatenation of a node's child digests.
var (
	leafHashPrefix = []byte{0x00}
	nodeHashPrefix = []byte{0x01}
)

// LeafHasher hashes one block's worth of file bytes into a leaf digest.
type LeafHasher interface {
	HashLeaf(data []byte) []byte
}

// NodeHasher hashes an internal node's real children, in child order, into
// a parent digest. children never includes padded (absent) branches.
type NodeHasher interface {
	HashChildren(children [][]byte) []byte
}

// TreeHasher is the domain-separated hashing contract C5 drives: leaves
// hash `0x00 || data`, internal nodes hash `0x01 || child_0 || ... ||
// child_n`.
type TreeHasher interface {
	LeafHasher
	NodeHasher
}

var _ TreeHasher = &DefaultTreeHasher{}

// DefaultTreeHasher drives a single underlying hash.Hash, reusing it (via
// Reset) across every node the way stack.go's leafHash/nodeHash methods
// reuse one hash.Hash and one scratch buffer instead of allocating a fresh
// digest per node.
type DefaultTreeHasher struct {
	h   hash.Hash
	buf []byte
}

// NewDefaultHasher returns a TreeHasher driven by h. h is reset before each
// use, so the caller must not use h concurrently with the returned
// TreeHasher.
func NewDefaultHasher(h hash.Hash) *DefaultTreeHasher {
	return &DefaultTreeHasher{h: h, buf: make([]byte, 0, h.Size())}
}

func (d *DefaultTreeHasher) HashLeaf(data []byte) []byte {
	d.h.Reset()
	d.h.Write(leafHashPrefix)
	d.h.Write(data)
	return d.h.Sum(d.buf[:0])
}

func (d *DefaultTreeHasher) HashChildren(children [][]byte) []byte {
	d.h.Reset()
	d.h.Write(nodeHashPrefix)
	for _, c := range children {
		d.h.Write(c)
	}
	return d.h.Sum(d.buf[:0])
}
