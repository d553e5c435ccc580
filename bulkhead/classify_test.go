package bulkhead

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type wrappedCancel struct {
	cause error
}

func (w *wrappedCancel) Error() string { return fmt.Sprintf("completion failed: %v", w.cause) }
func (w *wrappedCancel) Unwrap() error { return w.cause }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want terminalKind
	}{
		{"nil is success", nil, kindSuccess},
		{"plain error is failure", errors.New("boom"), kindFailure},
		{"context.Canceled is cancelled", context.Canceled, kindCancelled},
		{"wrapped cancellation one level is cancelled", &wrappedCancel{cause: context.Canceled}, kindCancelled},
		{"wrapped non-cancellation is failure", &wrappedCancel{cause: errors.New("x")}, kindFailure},
		{"context.DeadlineExceeded is failure, not cancelled", context.DeadlineExceeded, kindFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify_deeperWrappingUnspecified(t *testing.T) {
	// Two levels of wrapping is deliberately out of the bounded,
	// single-level unwrap classify performs: document the actual
	// behavior (FAILURE) rather than assert a stronger guarantee we
	// don't provide.
	twiceWrapped := &wrappedCancel{cause: &wrappedCancel{cause: context.Canceled}}
	if got := classify(twiceWrapped); got != kindFailure {
		t.Errorf("expected two-level-deep cancellation to classify as FAILURE, got %v", got)
	}
}
