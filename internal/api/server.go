package api

import (
	"net/http"

	"github.com/darmiel/doipv/internal/api/middleware"
	"github.com/darmiel/doipv/internal/doip"
	"github.com/darmiel/doipv/internal/service"
	"github.com/darmiel/doipv/internal/tasks"
)

type Server struct {
	service     *service.VerificationService
	taskManager *tasks.Manager
	providers   *doip.Registry
}

func NewServer(
	svc *service.VerificationService,
	taskManager *tasks.Manager,
	providers *doip.Registry,
) *Server {
	return &Server{
		service:     svc,
		taskManager: taskManager,
		providers:   providers,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)
	mux.HandleFunc("GET "+ProvidersRoute, s.handleProviders)

	// verification
	mux.HandleFunc("GET "+VerifyASPERoute, s.handleVerifyASPE)
	mux.HandleFunc("POST "+VerifyKeysRoute, s.handleVerifyKeys)

	// background tasks
	mux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
	mux.HandleFunc("POST "+TriggerTaskRoute, s.handleTriggerTask)
	mux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)

	return middleware.CorrelationIDMiddleware(
		middleware.RecoverMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
