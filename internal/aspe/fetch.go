package aspe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultFetchTimeout = 10 * time.Second
	maxTokenSize        = 1 << 20
)

// Fetcher retrieves the raw signed token of a profile.
type Fetcher interface {
	Fetch(ctx context.Context, uri URI) (string, error)
}

// FetchOptions configures the HTTPFetcher.
type FetchOptions struct {
	// SkipVerifySSL disables TLS certificate validation. Off by default.
	SkipVerifySSL bool
	Timeout       time.Duration
	UserAgent     string
}

var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher fetches profile tokens from the well-known endpoint of the profile's domain.
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
}

func NewHTTPFetcher(opts FetchOptions) *HTTPFetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.SkipVerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicitly requested by the user
	}
	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, uri URI) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.ProfileURL(), nil)
	if err != nil {
		return "", newError(ErrCodeMalformedURI, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", JWSMediaType)
	req.Header.Set("Accept", JWSMediaType)
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", newError(ErrCodeFetchFailed, err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newError(ErrCodeFetchFailed, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenSize+1))
	if err != nil {
		return "", newError(ErrCodeFetchFailed, fmt.Errorf("reading response: %w", err))
	}
	if len(data) > maxTokenSize {
		return "", newError(ErrCodeMalformedToken, errors.New("token exceeds size limit"))
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", newError(ErrCodeMalformedToken, errors.New("empty response"))
	}
	return token, nil
}
