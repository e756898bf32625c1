// Package poll drives the fixed-interval refresh cycle. There is exactly
// one runner per process; overlapping runs are skipped, not queued, and
// resilience against upstream outages comes from the next tick (plus the
// external supervisor restarting the whole process), not from internal
// backoff.
package poll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marcinmaslon/wolf-comm/internal/logging"
)

const MaxLogEntries = 1000

// HandlerFunc is one refresh cycle. The passed logger also records into the
// runner's log ring for status reporting.
type HandlerFunc func(ctx context.Context, logger logging.InternalLogger) error

type Status struct {
	Name       string    `json:"name,omitempty"`
	Running    bool      `json:"running,omitempty"`
	LastRun    time.Time `json:"last_run"`
	LastResult string    `json:"last_result,omitempty"`
	NextRun    time.Time `json:"next_run"`
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
}

type Runner struct {
	Name     string
	Interval time.Duration
	Handler  HandlerFunc

	mu         sync.RWMutex
	running    bool
	lastRun    time.Time
	lastResult string
	logs       []LogEntry
}

func NewRunner(name string, interval time.Duration, handler HandlerFunc) *Runner {
	return &Runner{
		Name:     name,
		Interval: interval,
		Handler:  handler,
		logs:     make([]LogEntry, 0),
	}
}

// Run executes the handler immediately and then on every tick until the
// context is cancelled. A non-positive interval means run once.
func (r *Runner) Run(ctx context.Context) {
	r.runOnce(ctx)
	if r.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	r.mu.Lock()

	l := log.With().Str("task", r.Name).Logger()

	if r.running {
		r.mu.Unlock()
		l.Warn().Msg("previous cycle still running, skipping this tick")
		return
	}
	r.running = true
	r.logs = make([]LogEntry, 0)
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.lastRun = time.Now()
		r.mu.Unlock()
	}()

	logger := logging.NewMultiLogger(logging.NewZLogger(l), &ringLogger{runner: r})

	start := time.Now()
	err := r.Handler(ctx, logger)
	duration := time.Since(start)

	r.mu.Lock()
	if err != nil {
		r.lastResult = fmt.Sprintf("failed: %v", err)
	} else {
		r.lastResult = "success"
	}
	r.mu.Unlock()

	if err != nil {
		logger.Error("cycle failed after %s: %v", duration, err)
	} else {
		logger.Info("cycle completed in %s", duration)
	}
}

func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var nextRun time.Time
	if r.Interval > 0 && !r.lastRun.IsZero() {
		nextRun = r.lastRun.Add(r.Interval)
	}
	return Status{
		Name:       r.Name,
		Running:    r.running,
		LastRun:    r.lastRun,
		LastResult: r.lastResult,
		NextRun:    nextRun,
	}
}

func (r *Runner) Logs() []LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cpy := make([]LogEntry, len(r.logs))
	copy(cpy, r.logs)
	return cpy
}

func (r *Runner) appendLog(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.logs) >= MaxLogEntries {
		return
	}
	r.logs = append(r.logs, LogEntry{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
	})
}

var _ logging.InternalLogger = (*ringLogger)(nil)

// ringLogger stores handler output in the runner's log ring.
type ringLogger struct {
	runner *Runner
}

func (l *ringLogger) Info(format string, args ...any) {
	l.runner.appendLog("info", fmt.Sprintf(format, args...))
}

func (l *ringLogger) Warn(format string, args ...any) {
	l.runner.appendLog("warn", fmt.Sprintf(format, args...))
}

func (l *ringLogger) Error(format string, args ...any) {
	l.runner.appendLog("error", fmt.Sprintf(format, args...))
}
