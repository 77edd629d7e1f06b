package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	MaxLogsPerTask = 1000

	defaultTaskTimeout = 5 * time.Minute
)

type Task struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Handler  TaskFunc

	registeredAt time.Time

	mu         sync.RWMutex
	running    bool
	runs       int
	lastRun    time.Time
	lastResult string
	logs       []LogEntry
}

// Run executes the task once. A run is skipped if the previous one has not finished yet.
// It returns false if the run was skipped.
func (t *Task) Run(ctx context.Context) bool {
	l := log.With().Str("task", t.Name).Logger()

	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		l.Warn().Msg("task is already running, skipping execution")
		return false
	}
	t.running = true
	t.logs = make([]LogEntry, 0)
	t.mu.Unlock()

	logger := runLogger(t, l)
	logger.Debug("starting task execution")

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := t.Handler(ctx, logger)
	duration := time.Since(start)

	t.mu.Lock()
	t.running = false
	t.runs++
	t.lastRun = time.Now()
	if err != nil {
		t.lastResult = fmt.Sprintf("failed: %v", err)
	} else {
		t.lastResult = "success"
	}
	t.mu.Unlock()

	if err != nil {
		logger.Error("task failed after %s: %v", duration, err)
	} else {
		logger.Debug("task completed in %s", duration)
	}
	return true
}

func (t *Task) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var next time.Time
	if t.Interval > 0 {
		if !t.lastRun.IsZero() {
			next = t.lastRun.Add(t.Interval)
		} else {
			next = t.registeredAt.Add(t.Interval)
		}
	}
	return TaskStatus{
		Name:       t.Name,
		Running:    t.running,
		Runs:       t.runs,
		LastRun:    t.lastRun,
		LastResult: t.lastResult,
		NextRun:    next,
	}
}

// Logs returns the log of the last run.
func (t *Task) Logs() []LogEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cpy := make([]LogEntry, len(t.logs))
	copy(cpy, t.logs)
	return cpy
}

func (t *Task) appendLog(level, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logs = append(t.logs, LogEntry{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
	})
	if len(t.logs) > MaxLogsPerTask {
		t.logs = t.logs[1:]
	}
}
