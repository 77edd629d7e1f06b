package tasks

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// Manager runs registered tasks periodically until its context is done.
type Manager struct {
	mu      sync.RWMutex
	tasks   map[string]*Task
	ctx     context.Context
	started bool
	wg      sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{
		tasks: make(map[string]*Task),
	}
}

// Register adds a task. Tasks with an interval are scheduled once the manager is started.
func (m *Manager) Register(name string, interval, timeout time.Duration, fn TaskFunc) {
	task := &Task{
		Name:         name,
		Interval:     interval,
		Timeout:      timeout,
		Handler:      fn,
		registeredAt: time.Now(),
		logs:         make([]LogEntry, 0),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[name] = task
	if m.started && interval > 0 {
		m.schedule(task)
	}
}

// Start schedules all periodic tasks. They stop when ctx is done; Wait blocks until they did.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.ctx = ctx
	for _, task := range m.tasks {
		if task.Interval > 0 {
			m.schedule(task)
		}
	}
}

func (m *Manager) Wait() {
	m.wg.Wait()
}

// Trigger runs a task once in the background, outside its schedule.
func (m *Manager) Trigger(name string) error {
	task, err := m.get(name)
	if err != nil {
		return err
	}
	m.mu.RLock()
	ctx := m.ctx
	m.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	go task.Run(ctx)
	return nil
}

// ListStatus returns the status of all tasks, sorted by name.
func (m *Manager) ListStatus() []TaskStatus {
	m.mu.RLock()
	list := make([]TaskStatus, 0, len(m.tasks))
	for _, task := range m.tasks {
		list = append(list, task.Status())
	}
	m.mu.RUnlock()

	slices.SortFunc(list, func(a, b TaskStatus) int {
		return strings.Compare(a.Name, b.Name)
	})
	return list
}

func (m *Manager) GetLogs(name string) ([]LogEntry, error) {
	task, err := m.get(name)
	if err != nil {
		return nil, err
	}
	return task.Logs(), nil
}

func (m *Manager) get(name string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[name]
	if !ok {
		return nil, TaskNotFoundError{Name: name}
	}
	return task, nil
}

// schedule must be called with m.mu held.
func (m *Manager) schedule(task *Task) {
	ctx := m.ctx
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(task.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				task.Run(ctx)
			}
		}
	}()
}
