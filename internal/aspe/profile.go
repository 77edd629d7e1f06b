package aspe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/darmiel/doipv/internal/core"
	"github.com/darmiel/doipv/internal/logging"
)

// ClaimVerifier verifies every claim of a subject and returns one outcome per claim URI, in input order.
type ClaimVerifier interface {
	VerifyAll(ctx context.Context, subjectURI string, claimURIs []string) ([]core.ClaimOutcome, error)
}

// Verifier runs the complete profile pipeline: fetch, authenticate, decode, verify claims.
type Verifier struct {
	fetcher           Fetcher
	claims            ClaimVerifier
	strictFingerprint bool
	logger            logging.InternalLogger
}

type Option func(*Verifier)

// WithStrictFingerprint rejects profiles whose key fingerprint differs from the URI's local part.
func WithStrictFingerprint(strict bool) Option {
	return func(v *Verifier) {
		v.strictFingerprint = strict
	}
}

func WithLogger(logger logging.InternalLogger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

func NewVerifier(fetcher Fetcher, claims ClaimVerifier, opts ...Option) *Verifier {
	v := &Verifier{
		fetcher: fetcher,
		claims:  claims,
		logger:  logging.Nop{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify fetches the profile identified by rawURI and verifies it.
func (v *Verifier) Verify(ctx context.Context, rawURI string) (*core.VerifiedProfile, error) {
	uri, err := ParseURI(rawURI)
	if err != nil {
		return nil, err
	}
	v.logger.Debug("fetching profile token from %s", uri.ProfileURL())
	token, err := v.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	return v.VerifyToken(ctx, uri, token)
}

// VerifyToken authenticates an already fetched token and verifies its claims.
// No profile is returned unless the token's signature is valid.
func (v *Verifier) VerifyToken(ctx context.Context, uri URI, token string) (*core.VerifiedProfile, error) {
	if strings.TrimSpace(token) == "" {
		return nil, newError(ErrCodeMalformedToken, errors.New("empty token"))
	}

	desc, err := headerKey(token)
	if err != nil {
		return nil, err
	}

	verified, err := SelectAndVerify(desc, token)
	if err != nil {
		return nil, err
	}

	fingerprint, err := Fingerprint(verified.Key)
	if err != nil {
		return nil, newError(ErrCodeInvalidKey, err)
	}
	if fingerprint != uri.Local {
		if v.strictFingerprint {
			return nil, newError(ErrCodeFingerprintMismatch,
				fmt.Errorf("key fingerprint %s, profile URI %s", fingerprint, uri))
		}
		v.logger.Warn("key fingerprint %s does not match profile URI %s", fingerprint, uri)
	}

	record := Decode(uri.String(), verified.Payload)
	v.logger.Debug("profile %s declares %d claim(s)", uri, len(record.ClaimURIs))

	outcomes, err := v.claims.VerifyAll(ctx, uri.String(), record.ClaimURIs)
	if err != nil {
		return nil, fmt.Errorf("verifying claims: %w", err)
	}

	return core.NewVerifiedProfile(record, fingerprint, outcomes), nil
}
