package bulkhead

import "sync/atomic"

// permitCounter is a wait-free, non-blocking bounded counter. It tracks
// how many of limit permits are currently available, supporting a
// compare-and-swap tryAcquire and an atomic-add release. release and
// snapshot check 0 <= available <= limit and report a violation rather
// than silently letting the count drift out of range; tryAcquire never
// decrements below zero and reports only whether it acquired.
type permitCounter struct {
	limit     int32
	available int32
}

func newPermitCounter(limit int) *permitCounter {
	return &permitCounter{
		limit:     int32(limit),
		available: int32(limit),
	}
}

// tryAcquire attempts to decrement available by one. It returns true iff
// the decrement happened. Wait-free: a single CAS loop, no blocking.
func (p *permitCounter) tryAcquire() bool {
	for {
		cur := atomic.LoadInt32(&p.available)
		if cur <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt32(&p.available, cur, cur-1) {
			return true
		}
	}
}

// release increments available by one and validates the range invariant.
// A non-nil return indicates the counter observed a value outside
// [0, limit] after the increment — a bug in permit accounting, surfaced
// to the caller rather than silently tolerated.
func (p *permitCounter) release() *BulkheadError {
	v := atomic.AddInt32(&p.available, 1)
	if v < 0 || v > p.limit {
		return NewInvariantViolationError(int(v), int(p.limit))
	}
	return nil
}

// snapshot returns a best-effort, non-linearizable read of available,
// validating the range invariant.
func (p *permitCounter) snapshot() (int, *BulkheadError) {
	v := atomic.LoadInt32(&p.available)
	if v < 0 || v > p.limit {
		return int(v), NewInvariantViolationError(int(v), int(p.limit))
	}
	return int(v), nil
}

// atomicFlag is a single-shot, two-valued CAS flag: not-yet-marked or
// marked. It is the released flag guarding permit release — the one
// linearization point between the terminal-observer path and the
// caller-cancel path. Exactly one caller of tryMark ever observes true.
type atomicFlag struct {
	v int32
}

// tryMark flips the flag from unmarked to marked and reports whether this
// call did so. Wait-free.
func (f *atomicFlag) tryMark() bool {
	return atomic.CompareAndSwapInt32(&f.v, 0, 1)
}
