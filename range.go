package merkletree

import "fmt"

// BlockRange identifies a contiguous span of block indices. When Inclusive
// is false, End is one past the last index in the span (a half-open range);
// when true, End is the last index itself.
type BlockRange struct {
	Start     uint64
	End       uint64
	Inclusive bool
}

// Range returns the number of indices spanned by r.
func (r BlockRange) Range() uint64 {
	n := r.End - r.Start
	if r.Inclusive {
		n++
	}
	return n
}

// String renders r the way a hash file does: "[0xSTART-0xEND]" for an
// inclusive range, "[0xSTART-0xEND)" for a half-open one.
func (r BlockRange) String() string {
	endChar := ")"
	if r.Inclusive {
		endChar = "]"
	}
	return fmt.Sprintf("[0x%02x-0x%02x%s", r.Start, r.End, endChar)
}

// frame is one pending node in the iterative post-order walk: the nominal
// (half-open) block span it covers, and how many of its branch children
// have already been pushed.
type frame struct {
	start, end uint64
	childIdx   uint16
}

// BlockRangeIterator produces every real node of the conceptual branch-ary
// tree over a file's blocks, in post-order (children before parent). It is
// lazy, finite, and fully determined by the parameters passed to New — it
// never depends on I/O timing or threading: the traversal and the sequence
// of nodes a sink observes are one and the same.
type BlockRangeIterator struct {
	blockCount uint64
	branch     uint16
	stack      []frame
}

// NewBlockRangeIterator builds the iterator for a file of fileLen bytes
// under the given block size and branching factor.
func NewBlockRangeIterator(fileLen uint64, blockSize uint32, branch uint16) *BlockRangeIterator {
	if blockSize == 0 {
		panic("merkletree: block size must be nonzero")
	}
	if branch < 2 {
		panic("merkletree: branch must be at least 2")
	}
	blockCount := BlockCount(fileLen, blockSize)
	effectiveCount := expCeilLog(blockCount, branch)

	it := &BlockRangeIterator{blockCount: blockCount, branch: branch}
	it.pushIfReal(0, effectiveCount)
	return it
}

func (it *BlockRangeIterator) pushIfReal(start, end uint64) {
	if start < it.blockCount {
		it.stack = append(it.stack, frame{start: start, end: end})
	}
}

// Next returns the next node in the traversal, and true, or a zero
// BlockRange and false once the traversal is exhausted.
func (it *BlockRangeIterator) Next() (BlockRange, bool) {
	for len(it.stack) > 0 {
		top := len(it.stack) - 1
		size := it.stack[top].end - it.stack[top].start
		if size == 1 {
			start := it.stack[top].start
			it.stack = it.stack[:top]
			return BlockRange{Start: start, End: start, Inclusive: true}, true
		}
		if it.stack[top].childIdx < it.branch {
			i := it.stack[top].childIdx
			it.stack[top].childIdx++
			step := size / uint64(it.branch)
			childStart := it.stack[top].start + uint64(i)*step
			it.pushIfReal(childStart, childStart+step)
			continue
		}
		start, end := it.stack[top].start, it.stack[top].end
		it.stack = it.stack[:top]
		return BlockRange{Start: start, End: end - 1, Inclusive: true}, true
	}
	return BlockRange{}, false
}

// Collect drains the iterator into a slice. The tests use it to compare
// whole traversals; the verifier does not use the iterator.
func (it *BlockRangeIterator) Collect() []BlockRange {
	var out []BlockRange
	for {
		r, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, r)
	}
}
