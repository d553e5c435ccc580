// Package shutdown provides graceful-drain coordination for the bulkhead
// demo service. Rather than tracking a separate in-flight counter, it
// counts in-flight bulkhead admissions directly off
// bulkhead.Bulkhead.InFlight, so "drained" means "every admitted Handle
// has reached a terminal state".
package shutdown

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/janbalangue/async-bulkhead/bulkhead"
)

// Manager coordinates an orderly shutdown: once Begin is called, new
// admission attempts still go through the bulkhead unchanged (the
// bulkhead itself has no notion of draining), but the manager's Wait
// blocks until the bulkhead reports zero in-flight handles or the
// supplied context expires.
type Manager struct {
	b            *bulkhead.Bulkhead
	shuttingDown int32
	pollInterval time.Duration
}

// New returns a Manager watching b's in-flight count.
func New(b *bulkhead.Bulkhead) *Manager {
	return &Manager{b: b, pollInterval: 10 * time.Millisecond}
}

// Begin marks shutdown as started. It does not by itself stop new
// submissions; callers are expected to stop routing new work to the
// bulkhead (e.g. by failing health checks) before or alongside calling
// Begin.
func (m *Manager) Begin() {
	atomic.StoreInt32(&m.shuttingDown, 1)
}

// IsShuttingDown reports whether Begin has been called.
func (m *Manager) IsShuttingDown() bool {
	return atomic.LoadInt32(&m.shuttingDown) == 1
}

// Wait blocks until the bulkhead's in-flight count reaches zero or ctx
// is done, whichever comes first.
func (m *Manager) Wait(ctx context.Context) error {
	if m.b.InFlight() == 0 {
		return nil
	}
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if m.b.InFlight() == 0 {
				return nil
			}
		}
	}
}

// WaitWithTimeout calls Wait bounded by timeout, starting from now.
func (m *Manager) WaitWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return m.Wait(ctx)
}

// Shutdown marks shutdown as started and waits (bounded by timeout) for
// the bulkhead to drain.
func (m *Manager) Shutdown(timeout time.Duration) error {
	m.Begin()
	return m.WaitWithTimeout(timeout)
}
