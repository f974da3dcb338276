package merkletree

import "runtime"

// Awaitable is a handle that blocks once to retrieve the result of a
// scheduled computation.
type Awaitable[T any] interface {
	Await() T
}

// dummyAwaitable is immediately ready: its value was already computed when
// the Awaitable was constructed.
type dummyAwaitable[T any] struct {
	value T
}

func (d dummyAwaitable[T]) Await() T { return d.value }

// chanAwaitable is backed by a single-shot, buffered channel, exactly like
// thread_pool.rs's RecvAwaitable.
type chanAwaitable[T any] struct {
	ch chan T
}

func (c chanAwaitable[T]) Await() T { return <-c.ch }

// Evaluator schedules independent computations. It may run them out of
// wall-clock order relative to one another, but each individual Compute
// call's task always runs to completion before its Awaitable is signaled.
type Evaluator interface {
	// Compute schedules task and returns an Awaitable for its result. task
	// must be safe to run on any goroutine.
	Compute(task func() any) Awaitable[any]
}

// DummyEvaluator runs every task synchronously on the calling goroutine,
// satisfying the same Evaluator contract as PoolEvaluator. Tests assert that
// DummyEvaluator and PoolEvaluator produce identical output.
type DummyEvaluator struct{}

func NewDummyEvaluator() *DummyEvaluator { return &DummyEvaluator{} }

func (DummyEvaluator) Compute(task func() any) Awaitable[any] {
	return dummyAwaitable[any]{value: task()}
}

// PoolEvaluator runs tasks on a fixed-size worker pool fed by a single
// channel, the same shape as the per-path worker goroutines in
// makew0rld-merkdir's directory-hashing command: a bounded number of
// goroutines pulling work items off a channel, each result delivered back
// over its own single-shot channel.
type PoolEvaluator struct {
	jobs chan job
}

type job struct {
	task func() any
	out  chan any
}

// NewPoolEvaluator starts a worker pool of the given size. A size <= 0
// defaults to max(1, NumCPU-1), matching merkle_hash_file's thread_count
// calculation in the original source.
func NewPoolEvaluator(workers int) *PoolEvaluator {
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}
	e := &PoolEvaluator{jobs: make(chan job)}
	for i := 0; i < workers; i++ {
		go e.worker()
	}
	return e
}

func (e *PoolEvaluator) worker() {
	for j := range e.jobs {
		j.out <- j.task()
	}
}

func (e *PoolEvaluator) Compute(task func() any) Awaitable[any] {
	out := make(chan any, 1)
	e.jobs <- job{task: task, out: out}
	return chanAwaitable[any]{ch: out}
}

// Close stops accepting new work. It does not wait for in-flight tasks;
// callers that submitted tasks already hold Awaitables for them.
func (e *PoolEvaluator) Close() {
	close(e.jobs)
}
