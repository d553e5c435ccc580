// Package bulkhead implements an in-process, non-blocking admission
// control primitive that bounds the number of concurrently in-flight
// asynchronous operations.
//
// A Bulkhead decides, synchronously at submission time, whether an
// operation may start. If admitted, it tracks the operation to terminal
// completion and releases exactly one unit of capacity; if not, it fails
// fast with a rejection and never invokes the caller's operation factory.
//
// The package has no execution engine, scheduler, timeout source, retry
// policy, or queue of its own — it only observes a future-like Result the
// caller's factory produces. See Factory and Result.
package bulkhead

import "fmt"

// Factory is the caller-supplied, cold, nullary operation: it must not
// begin any work before it is invoked, and the bulkhead invokes it at
// most once, only after a permit has been acquired. Returning a non-nil
// error models "the factory threw"; returning a nil
// Result with a nil error is a caller-contract violation (NullResult).
type Factory[T any] func() (Result[T], error)

// Bulkhead bounds the number of concurrently in-flight operations
// admitted through Submit. It is safe for concurrent use from any number
// of goroutines, never blocks, and has no explicit shutdown — its
// lifetime extends until no Handles remain.
type Bulkhead struct {
	limit    int
	permit   *permitCounter
	listener Listener
}

// New constructs a Bulkhead that admits at most limit concurrently
// in-flight operations. limit must be positive. A nil listener is
// equivalent to NoopListener{}.
//
// A non-positive limit is a programmer error, not an operational one: it
// panics immediately, consistent with how this package reports every
// Caller Error — synchronously, at the call site, without
// ever touching permit accounting.
func New(limit int, listener Listener) *Bulkhead {
	if limit <= 0 {
		panic(&CallerError{Message: fmt.Sprintf("limit must be positive, got %d", limit)})
	}
	if listener == nil {
		listener = NoopListener{}
	}
	return &Bulkhead{
		limit:    limit,
		permit:   newPermitCounter(limit),
		listener: listener,
	}
}

// Limit returns the Bulkhead's configured, immutable capacity.
func (b *Bulkhead) Limit() int {
	return b.limit
}

// Available returns a best-effort, non-linearizable snapshot of unused
// capacity. It panics if the permit counter observes a value outside
// [0, limit] — an Invariant Violation, always a bug. Available must
// never be used to predict admission; only Submit decides.
func (b *Bulkhead) Available() int {
	v, verr := b.permit.snapshot()
	if verr != nil {
		panic(verr)
	}
	return v
}

// InFlight returns limit - Available, equally best-effort and subject to
// the same Invariant Violation panic.
func (b *Bulkhead) InFlight() int {
	return b.limit - b.Available()
}

// Submit attempts to admit one operation. factory must not be nil — a
// nil factory is a Caller Error and panics, just like a non-positive
// limit passed to New, and never consumes a permit.
//
// If the Bulkhead is saturated, Submit dispatches Listener.OnRejected and
// returns a Handle already in the Failed state, carrying a
// *BulkheadError with code ErrCodeRejected; factory is never invoked.
//
// Otherwise Submit dispatches Listener.OnAdmitted, invokes factory
// exactly once, and attaches a terminal observer to the Result it
// produces. The returned Handle's eventual terminal state is driven
// solely by the permit-release state machine in handle.go — the first of
// {underlying completion, Handle.Cancel, registration failure} to win a
// single CAS decides the one release and the one Listener.OnReleased
// dispatch.
func Submit[T any](b *Bulkhead, factory Factory[T]) Handle[T] {
	if factory == nil {
		panic(&CallerError{Message: "operation factory must not be nil"})
	}

	if !b.permit.tryAcquire() {
		dispatch(func() { b.listener.OnRejected() })
		return terminalHandle[T](Failed, NewRejectedError())
	}

	dispatch(func() { b.listener.OnAdmitted() })

	result, err := factory()
	if err != nil {
		if verr := b.permit.release(); verr != nil {
			return terminalHandle[T](Failed, verr)
		}
		dispatch(func() { b.listener.OnReleased(ReleaseFailure, err) })
		return terminalHandle[T](Failed, err)
	}
	if result == nil {
		nrErr := NewNullResultError()
		if verr := b.permit.release(); verr != nil {
			return terminalHandle[T](Failed, verr)
		}
		dispatch(func() { b.listener.OnReleased(ReleaseFailure, nrErr) })
		return terminalHandle[T](Failed, nrErr)
	}

	h := newHandle[T](b.permit, b.listener)

	if regErr := attachObserver(result, h); regErr != nil {
		// Registration failed: the bulkhead must still release exactly
		// once. The released flag is set unconditionally here (no CAS
		// race is possible yet — h has not
		// been returned to any caller who could call Cancel).
		h.released.tryMark()
		if verr := b.permit.release(); verr != nil {
			var zero T
			h.settleTerminal(Failed, zero, verr)
			return h
		}
		dispatch(func() { b.listener.OnReleased(ReleaseFailure, regErr) })
		var zero T
		h.settleTerminal(Failed, zero, regErr)
		return h
	}

	return h
}

// attachObserver registers h.onSupplierSettled on result, recovering any
// panic the caller's Result.Subscribe implementation raises and
// reporting it as a registration error: Go has no checked exceptions, so
// a buggy Subscribe implementation panicking is the closest analogue of
// "registration may fail".
func attachObserver[T any](result Result[T], h *handle[T]) (regErr error) {
	defer func() {
		if r := recover(); r != nil {
			regErr = fmt.Errorf("terminal observer registration panicked: %v", r)
		}
	}()
	result.Subscribe(h.onSupplierSettled)
	return nil
}
