package api

import (
	"net/http"

	"github.com/darmiel/doipv/internal/api/presenter"
	"github.com/darmiel/doipv/internal/buildinfo"
	"github.com/darmiel/doipv/internal/core"
)

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with service information including version and commit hash.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, buildinfo.GetBuildInfo(), http.StatusOK)
}

// handleProviders lists the service providers claims can be verified against.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers := s.providers.Providers()
	out := make([]core.ServiceProviderInfo, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Info)
	}
	presenter.JSON(w, r, out, http.StatusOK)
}
