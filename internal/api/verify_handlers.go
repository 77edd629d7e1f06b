package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/doipv/internal/api/presenter"
	"github.com/darmiel/doipv/internal/openpgp"
)

// maxBodySize caps request bodies of the verification endpoints.
const maxBodySize = 1 << 20

func DecodePayload(r *http.Request, dest any) error {
	contentType, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	switch strings.TrimSpace(contentType) {
	case "application/json", "":
		// strict encoding for JSON
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dest); err != nil {
			return err
		}
		// ensure there's no extra data
		if dec.More() {
			return errors.New("extra data in request body")
		}
		return nil
	default:
		return errors.New("unsupported content type")
	}
}

// handleVerifyASPE fetches and verifies the ASPE profile given in the "uri" query parameter.
func (s *Server) handleVerifyASPE(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	uri := strings.TrimSpace(r.URL.Query().Get("uri"))
	if uri == "" {
		presenter.Error(w, r, "missing 'uri' query parameter", http.StatusBadRequest)
		return
	}
	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("profile", uri)
	})

	res, err := s.service.VerifyASPE(ctx, uri)
	if err != nil {
		logger.Warn().Err(err).Msg("profile verification failed")
		presenter.Err(w, r, err, "profile verification failed")
		return
	}

	if res.Cached {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	presenter.JSON(w, r, res.Profile, http.StatusOK)
}

// handleVerifyKeys verifies the proofs of an OpenPGP key given as proof mapping in the body.
func (s *Server) handleVerifyKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var mapping openpgp.ProofMapping
	if err := DecodePayload(r, &mapping); err != nil {
		logger.Warn().Err(err).Msg("failed to decode proof mapping")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	profile, err := s.service.VerifyKeys(ctx, &mapping)
	if err != nil {
		logger.Warn().Err(err).Msg("key verification failed")
		presenter.Err(w, r, err, "key verification failed")
		return
	}
	presenter.JSON(w, r, profile, http.StatusOK)
}
