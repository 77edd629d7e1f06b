package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/doipv/internal/aspe"
	"github.com/darmiel/doipv/internal/core"
	"github.com/darmiel/doipv/internal/openpgp"
)

// ProfileVerifier fetches and verifies an ASPE profile.
type ProfileVerifier interface {
	Verify(ctx context.Context, rawURI string) (*core.VerifiedProfile, error)
}

// ProfileCache keeps verified profiles by their canonical URI.
type ProfileCache interface {
	Get(ctx context.Context, uri string) (*core.VerifiedProfile, bool)
	Put(ctx context.Context, uri string, profile *core.VerifiedProfile)
}

// VerificationService is used by both the CLI and the server to verify profiles.
// All returned errors are *HTTPError.
type VerificationService struct {
	profiles ProfileVerifier
	claims   openpgp.ClaimVerifier
	cache    ProfileCache
}

// NewVerificationService creates the service. cache may be nil.
func NewVerificationService(profiles ProfileVerifier, claims openpgp.ClaimVerifier, cache ProfileCache) *VerificationService {
	return &VerificationService{
		profiles: profiles,
		claims:   claims,
		cache:    cache,
	}
}

type ASPEResult struct {
	Profile *core.VerifiedProfile
	Cached  bool
}

// VerifyASPE verifies the ASPE profile identified by rawURI, from cache if possible.
func (s *VerificationService) VerifyASPE(ctx context.Context, rawURI string) (*ASPEResult, error) {
	logger := log.Ctx(ctx)

	uri, err := aspe.ParseURI(rawURI)
	if err != nil {
		return nil, classify(err)
	}
	key := uri.String()

	if s.cache != nil {
		if profile, ok := s.cache.Get(ctx, key); ok {
			logger.Debug().Str("profile", key).Msg("serving profile from cache")
			return &ASPEResult{Profile: profile, Cached: true}, nil
		}
	}

	profile, err := s.profiles.Verify(ctx, key)
	if err != nil {
		logger.Debug().Err(err).Str("profile", key).Msg("profile verification failed")
		return nil, classify(err)
	}

	verified, total := profile.VerifiedCount(), len(profile.Claims())
	logger.Info().
		Str("profile", key).
		Int("verified", verified).
		Int("claims", total).
		Msg("profile verified")

	if s.cache != nil {
		s.cache.Put(ctx, key, profile)
	}
	return &ASPEResult{Profile: profile}, nil
}

// VerifyKeys verifies the proofs of an OpenPGP key.
func (s *VerificationService) VerifyKeys(ctx context.Context, mapping *openpgp.ProofMapping) (*openpgp.KeyProfile, error) {
	if err := mapping.Normalize(); err != nil {
		return nil, classify(err)
	}
	profile, err := openpgp.Verify(ctx, s.claims, mapping)
	if err != nil {
		return nil, classify(err)
	}

	verified, total := profile.VerifiedCount()
	log.Ctx(ctx).Info().
		Str("fingerprint", profile.Fingerprint).
		Int("verified", verified).
		Int("proofs", total).
		Msg("key proofs verified")
	return profile, nil
}
