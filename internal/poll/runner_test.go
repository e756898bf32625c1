package poll

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marcinmaslon/wolf-comm/internal/logging"
)

func TestRunner_RunOnce(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner("refresh", 0, func(ctx context.Context, logger logging.InternalLogger) error {
		calls.Add(1)
		logger.Info("fetched %d values", 7)
		return nil
	})

	r.Run(context.Background())

	if got := calls.Load(); got != 1 {
		t.Fatalf("handler ran %d times, want 1", got)
	}

	status := r.Status()
	if status.LastResult != "success" {
		t.Errorf("LastResult = %q, want success", status.LastResult)
	}
	if !status.NextRun.IsZero() {
		t.Errorf("NextRun = %v, want zero for one-shot runner", status.NextRun)
	}

	logs := r.Logs()
	if len(logs) == 0 || !strings.Contains(logs[0].Message, "fetched 7 values") {
		t.Errorf("Logs() = %+v, want handler output recorded", logs)
	}
}

func TestRunner_FailureRecorded(t *testing.T) {
	r := NewRunner("refresh", 0, func(ctx context.Context, logger logging.InternalLogger) error {
		return errors.New("portal unreachable")
	})

	r.Run(context.Background())

	status := r.Status()
	if !strings.Contains(status.LastResult, "portal unreachable") {
		t.Errorf("LastResult = %q, want failure message", status.LastResult)
	}
	if status.LastRun.IsZero() {
		t.Error("LastRun not recorded")
	}
}

func TestRunner_TicksUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner("refresh", 5*time.Millisecond, func(ctx context.Context, logger logging.InternalLogger) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	r.Run(ctx)

	if got := calls.Load(); got < 2 {
		t.Errorf("handler ran %d times, want at least 2", got)
	}
	if status := r.Status(); status.NextRun.IsZero() {
		t.Error("NextRun not set for interval runner")
	}
}
