package client

import (
	"context"

	"github.com/darmiel/doipv/internal/api"
	"github.com/darmiel/doipv/internal/core"
	"github.com/darmiel/doipv/internal/openpgp"
)

type ASPEResult struct {
	Profile *core.VerifiedProfile

	// Cached is true if the server answered from its profile cache.
	Cached bool

	CorrelationID string
}

// VerifyASPE asks the server to verify the ASPE profile identified by uri.
func (c *Client) VerifyASPE(ctx context.Context, uri string) (*ASPEResult, error) {
	var profile core.VerifiedProfile
	resp, err := c.get(ctx, c.url().
		setPath(api.VerifyASPERoute).
		addQueryParam("uri", uri).
		build(), &profile)
	if err != nil {
		return nil, err
	}
	return &ASPEResult{
		Profile:       &profile,
		Cached:        resp.Header.Get(api.CacheHeader) == "hit",
		CorrelationID: correlationFromResponse(resp),
	}, nil
}

// VerifyKeys asks the server to verify the proofs of an OpenPGP key.
func (c *Client) VerifyKeys(ctx context.Context, mapping *openpgp.ProofMapping) (*openpgp.KeyProfile, string, error) {
	var profile openpgp.KeyProfile
	resp, err := c.post(ctx, c.url().
		setPath(api.VerifyKeysRoute).
		build(), mapping, &profile)
	if err != nil {
		return nil, correlationFromResponse(resp), err
	}
	return &profile, correlationFromResponse(resp), nil
}
