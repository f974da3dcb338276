package merkletree

import "sync"

// HashRange is one computed tree node: its block range, its byte range
// within the file, and its digest. byteRange uses inclusive byte offsets
// from the start of the file.
type HashRange struct {
	BlockRange BlockRange
	ByteRange  BlockRange
	Hash       []byte
}

// Sink accepts HashRange records as each node's digest finishes computing.
// Returning a non-nil error marks the hash as rejected, but HashFile does not
// stop early: it still walks the rest of the tree and passes every remaining
// node to Accept, then returns ErrConsumerRejected instead of the root
// digest. Neither the rejected HashRange nor the error Accept returned is
// handed back to the caller.
//
// Implementations must be safe for concurrent invocation. Accept runs on
// whatever goroutine the Evaluator chose to run that node's task: with
// DummyEvaluator that is always the calling goroutine, one node at a time,
// in traversal order; with PoolEvaluator and more than one worker, sibling
// nodes (e.g. two leaves under the same parent) are scheduled independently
// and may call Accept concurrently, in whichever order their digests happen
// to finish — not necessarily traversal order. A Sink that needs ordered
// output must either serialize and re-sort by HashRange.BlockRange itself,
// or be paired with DummyEvaluator.
type Sink interface {
	Accept(r HashRange) error
}

// DiscardSink accepts every record and discards it. Useful when only the
// root digest matters.
type DiscardSink struct{}

func (DiscardSink) Accept(HashRange) error { return nil }

// CollectSink appends every accepted record to Records. It is safe for
// concurrent use: under PoolEvaluator with more than one worker, sibling
// nodes' Accept calls can arrive on different goroutines at once, so every
// append is mutex-guarded. Records end up in whatever order Accept calls
// were serialized in, which is traversal order only when the evaluator runs
// tasks one at a time (DummyEvaluator, or a single-worker PoolEvaluator).
type CollectSink struct {
	mu      sync.Mutex
	Records []HashRange
}

func (s *CollectSink) Accept(r HashRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, r)
	return nil
}

// FuncSink adapts a plain function to the Sink interface. The function
// itself is responsible for its own concurrency safety if it may be called
// from multiple goroutines at once (see Sink).
type FuncSink func(HashRange) error

func (f FuncSink) Accept(r HashRange) error { return f(r) }
