package api

import (
	"errors"
	"net/http"

	"github.com/darmiel/doipv/internal/api/presenter"
	"github.com/darmiel/doipv/internal/tasks"
)

// handleListTasks responds with the list of tasks and their statuses.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, s.taskManager.ListStatus(), http.StatusOK)
}

type TriggerTaskResponse struct {
	Status string `json:"status"`
}

// handleTriggerTask runs a task outside its schedule.
func (s *Server) handleTriggerTask(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.taskManager.Trigger(name); err != nil {
		presenter.Error(w, r, err.Error(), taskErrorStatus(err))
		return
	}
	presenter.JSON(w, r, TriggerTaskResponse{
		Status: "triggered",
	}, http.StatusAccepted)
}

// handleLogsForTask retrieves the logs of the last run of a task.
func (s *Server) handleLogsForTask(w http.ResponseWriter, r *http.Request) {
	logs, err := s.taskManager.GetLogs(r.PathValue("name"))
	if err != nil {
		presenter.Error(w, r, err.Error(), taskErrorStatus(err))
		return
	}
	presenter.JSON(w, r, logs, http.StatusOK)
}

func taskErrorStatus(err error) int {
	if errors.Is(err, tasks.ErrTaskNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
