package bulkhead

import "testing"

type panickyListener struct{}

func (panickyListener) OnAdmitted()                  { panic("boom on admitted") }
func (panickyListener) OnRejected()                  { panic("boom on rejected") }
func (panickyListener) OnReleased(ReleaseKind, error) { panic("boom on released") }

var _ Listener = panickyListener{}

// A misbehaving Listener must never affect permit accounting or a
// Handle's terminal state.
func TestListenerPanicsAreSwallowed(t *testing.T) {
	b := New(1, panickyListener{})

	r := NewPromiseResult[int]()
	h := Submit(b, func() (Result[int], error) { return r, nil })
	if h.State() != Pending {
		t.Fatalf("expected admission to succeed despite panicky OnAdmitted, got %v", h.State())
	}

	r.Resolve(7)
	<-h.Done()

	if h.State() != Succeeded {
		t.Fatalf("expected Succeeded despite panicky OnReleased, got %v", h.State())
	}
	if b.InFlight() != 0 {
		t.Fatalf("expected permit released despite panicky listener, in_flight=%d", b.InFlight())
	}

	// Saturate to exercise the panicky OnRejected path too.
	r2 := NewPromiseResult[int]()
	Submit(b, func() (Result[int], error) { return r2, nil })
	h3 := Submit(b, func() (Result[int], error) { return NewPromiseResult[int](), nil })
	if !IsRejected(func() error { _, e := h3.Result(); return e }()) {
		t.Fatalf("expected rejection to still be reported despite panicky OnRejected")
	}
}

type failingSubscribeResult struct{}

func (failingSubscribeResult) Subscribe(func(int, error)) {
	panic("subscribe always fails")
}

// When terminal-observer registration fails, the bulkhead must still
// release exactly once.
func TestRegistrationFailure_releasesExactlyOnce(t *testing.T) {
	var releasedKind ReleaseKind
	var releasedErr error
	listener := &recordingListener{onReleased: func(k ReleaseKind, err error) {
		releasedKind = k
		releasedErr = err
	}}

	b := New(1, listener)
	h := Submit(b, func() (Result[int], error) { return failingSubscribeResult{}, nil })

	if h.State() != Failed {
		t.Fatalf("expected Failed, got %v", h.State())
	}
	if releasedKind != ReleaseFailure || releasedErr == nil {
		t.Fatalf("expected OnReleased(FAILURE, registration error), got (%v, %v)", releasedKind, releasedErr)
	}
	if b.InFlight() != 0 {
		t.Fatalf("expected permit released exactly once, in_flight=%d", b.InFlight())
	}

	h2 := Submit(b, func() (Result[int], error) { return NewPromiseResult[int](), nil })
	if h2.State() != Pending {
		t.Fatalf("expected next submission to admit, got %v", h2.State())
	}
}
