package presenter

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/doipv/internal/api/middleware"
	"github.com/darmiel/doipv/internal/aspe"
	"github.com/darmiel/doipv/internal/service"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	JSON(w, r, ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.CorrelationCtx(r.Context()),
	}, status)
}

// Err writes err with the status code attached by the service layer.
func Err(w http.ResponseWriter, r *http.Request, err error, short string) {
	JSON(w, r, ErrorResponse{
		Error:         short + ": " + err.Error(),
		Code:          string(aspe.CodeOf(err)),
		CorrelationID: middleware.CorrelationCtx(r.Context()),
	}, service.StatusCode(err))
}
