package doip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// maxProofSize caps how much of a proof document is read.
const maxProofSize = 2 << 20

var ErrProofFetch = errors.New("failed to fetch proof")

// ProofFetcher retrieves the raw proof document of a claim.
type ProofFetcher interface {
	Fetch(ctx context.Context, target string) ([]byte, error)
}

type httpProofFetcher struct {
	client    *http.Client
	userAgent string
}

func (f *httpProofFetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofFetch, err)
	}
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.8")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrProofFetch, target, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProofSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrProofFetch, err)
	}
	return body, nil
}

// TXTResolver is the part of net.Resolver used for DNS proofs.
type TXTResolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

type dnsProofFetcher struct {
	resolver TXTResolver
}

// Fetch returns all TXT records of the target, one per line.
func (f *dnsProofFetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	records, err := f.resolver.LookupTXT(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofFetch, err)
	}
	return []byte(strings.Join(records, "\n")), nil
}

var _ TXTResolver = (*net.Resolver)(nil)
