package client

import (
	"context"
	"fmt"
	"time"

	"github.com/darmiel/doipv/internal/api"
	"github.com/darmiel/doipv/internal/tasks"
)

// ListTasks returns the background tasks of the server, sorted by name.
func (c *Client) ListTasks(ctx context.Context) ([]tasks.TaskStatus, error) {
	var res []tasks.TaskStatus
	_, err := c.get(ctx, c.url().
		setPath(api.ListTasksRoute).
		build(), &res)
	return res, err
}

// Task returns the status of a single task. The error matches tasks.ErrTaskNotFound if there is none.
func (c *Client) Task(ctx context.Context, name string) (*tasks.TaskStatus, error) {
	list, err := c.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], nil
		}
	}
	return nil, tasks.TaskNotFoundError{Name: name}
}

func (c *Client) TriggerTask(ctx context.Context, name string) error {
	var res api.TriggerTaskResponse
	_, err := c.post(ctx, c.url().
		setPath(api.TriggerTaskRoute).
		setPathParam("name", name).
		build(), nil, &res)
	if err != nil {
		return err
	}
	if res.Status != "triggered" {
		return fmt.Errorf("unexpected response status: %s", res.Status)
	}
	return nil
}

// WaitForRun polls the task until it finished more than runs times and is no longer running.
func (c *Client) WaitForRun(ctx context.Context, name string, runs int, interval time.Duration) (*tasks.TaskStatus, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		status, err := c.Task(ctx, name)
		if err != nil {
			return nil, err
		}
		if status.Runs > runs && !status.Running {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) GetTaskLogs(ctx context.Context, name string) ([]tasks.LogEntry, error) {
	var res []tasks.LogEntry
	_, err := c.get(ctx, c.url().
		setPath(api.LogsForTaskRoute).
		setPathParam("name", name).
		build(), &res)
	return res, err
}
