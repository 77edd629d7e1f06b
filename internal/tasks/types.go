package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/darmiel/doipv/internal/logging"
)

// TaskFunc is a unit of background work, like purging the profile cache.
// Everything it logs through logger is kept with the task.
type TaskFunc func(ctx context.Context, logger logging.InternalLogger) error

type TaskStatus struct {
	Name       string    `json:"name"`
	Running    bool      `json:"running,omitempty"`
	Runs       int       `json:"runs"`
	LastRun    time.Time `json:"last_run"`
	LastResult string    `json:"last_result,omitempty"`
	NextRun    time.Time `json:"next_run"`
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
}

// ErrTaskNotFound matches every TaskNotFoundError.
var ErrTaskNotFound = errors.New("task not found")

type TaskNotFoundError struct {
	Name string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task '%s' not found", e.Name)
}

func (e TaskNotFoundError) Is(target error) bool {
	return target == ErrTaskNotFound
}
