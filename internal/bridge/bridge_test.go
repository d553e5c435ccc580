package bridge

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/janbalangue/async-bulkhead/bulkhead"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestListener_OnAdmitted(t *testing.T) {
	var buf bytes.Buffer
	l := New("orders", newTestLogger(&buf))
	l.OnAdmitted()

	out := buf.String()
	if !strings.Contains(out, "bulkhead admitted") || !strings.Contains(out, "orders") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestListener_OnRejected(t *testing.T) {
	var buf bytes.Buffer
	l := New("orders", newTestLogger(&buf))
	l.OnRejected()

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "bulkhead rejected submission") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestListener_OnReleased_levelsByKind(t *testing.T) {
	cases := []struct {
		kind     bulkhead.ReleaseKind
		wantWarn bool
	}{
		{bulkhead.ReleaseSuccess, false},
		{bulkhead.ReleaseFailure, true},
		{bulkhead.ReleaseCancelled, true},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		l := New("orders", newTestLogger(&buf))
		l.OnReleased(tc.kind, nil)

		out := buf.String()
		hasWarn := strings.Contains(out, "level=WARN")
		if hasWarn != tc.wantWarn {
			t.Fatalf("kind %v: expected warn=%v, got output: %s", tc.kind, tc.wantWarn, out)
		}
	}
}

func TestTracingListener_noopWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	l := New("orders", newTestLogger(&buf))
	tl := l.WithContext(context.Background())

	// No active span: must not panic, and must still log via the
	// embedded Listener.
	tl.OnAdmitted()
	tl.OnRejected()
	tl.OnReleased(bulkhead.ReleaseSuccess, nil)

	out := buf.String()
	if !strings.Contains(out, "bulkhead admitted") {
		t.Fatalf("expected admitted log line, got: %s", out)
	}
}

func TestListenerSatisfiesBulkheadListener(t *testing.T) {
	var _ bulkhead.Listener = New("x", slog.Default())
}
