package doip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/doipv/internal/core"
)

var (
	ErrNoProvider    = errors.New("no service provider matches the claim")
	ErrProofNotFound = errors.New("proof does not reference the subject")
)

type Options struct {
	// Timeout bounds a single proof request. Zero means no timeout besides the context.
	Timeout time.Duration

	UserAgent string

	// ProxyURL is used for providers that set proof.use_proxy.
	ProxyURL string

	// Resolver is used for DNS proofs. Defaults to net.DefaultResolver.
	Resolver TXTResolver

	// Transport is the base transport for HTTP proofs. Defaults to a clone of http.DefaultTransport.
	Transport *http.Transport
}

// Checker verifies claims against the service providers of a Registry.
type Checker struct {
	registry  *Registry
	direct    ProofFetcher
	proxied   ProofFetcher
	proxyHost string
	dns       ProofFetcher
}

var _ core.ClaimChecker = (*Checker)(nil)

func NewChecker(registry *Registry, opts Options) (*Checker, error) {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	c := &Checker{
		registry: registry,
		direct: &httpProofFetcher{
			client:    &http.Client{Transport: base, Timeout: opts.Timeout},
			userAgent: opts.UserAgent,
		},
		dns: &dnsProofFetcher{resolver: resolver},
	}

	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil || proxyURL.Host == "" {
			return nil, fmt.Errorf("invalid proxy url '%s'", opts.ProxyURL)
		}
		proxied := base.Clone()
		proxied.Proxy = http.ProxyURL(proxyURL)
		c.proxied = &httpProofFetcher{
			client:    &http.Client{Transport: proxied, Timeout: opts.Timeout},
			userAgent: opts.UserAgent,
		}
		c.proxyHost = proxyURL.Host
	}
	return c, nil
}

func (c *Checker) Registry() *Registry {
	return c.registry
}

// FindMatches returns the candidate providers of a claim, or ErrNoProvider.
func (c *Checker) FindMatches(claimURI string) ([]core.ClaimMatch, error) {
	matches := c.registry.FindMatches(claimURI)
	if len(matches) == 0 {
		return nil, ErrNoProvider
	}
	return matches, nil
}

// Verify tries the candidates in order; the first one whose proof references the subject wins.
// If none does, the returned error joins the reason of every candidate.
func (c *Checker) Verify(ctx context.Context, claimURI, subjectURI string, matches []core.ClaimMatch) (*core.VerificationResult, error) {
	if len(matches) == 0 {
		return nil, ErrNoProvider
	}

	var errs []error
	for _, m := range matches {
		p, ok := c.registry.Get(m.Provider.ID)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown provider", m.Provider.ID))
			continue
		}
		verified, proxyUsed, err := c.check(ctx, p, m.Captures, subjectURI)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Info.ID, err))
			continue
		}
		if !verified {
			errs = append(errs, fmt.Errorf("%s: %w", p.Info.ID, ErrProofNotFound))
			continue
		}

		log.Ctx(ctx).Debug().
			Str("claim", claimURI).
			Str("provider", p.Info.ID).
			Msg("claim verified")

		info := p.Info
		return &core.VerificationResult{
			ServiceProvider: &info,
			ProxyUsed:       proxyUsed,
		}, nil
	}
	return nil, errors.Join(errs...)
}

func (c *Checker) check(ctx context.Context, p *Provider, captures map[string]string, subjectURI string) (bool, string, error) {
	fetcher, proxyUsed := c.fetcherFor(p)
	target := p.target(captures)

	body, err := fetcher.Fetch(ctx, target)
	if err != nil {
		return false, "", err
	}

	var doc any
	if p.Proof.Format == FormatJSON {
		if err := json.Unmarshal(body, &doc); err != nil {
			return false, "", fmt.Errorf("decoding proof document: %w", err)
		}
	}

	ok, err := p.evaluate(body, doc, subjectURI, captures)
	if err != nil {
		return false, "", err
	}
	return ok, proxyUsed, nil
}

func (c *Checker) fetcherFor(p *Provider) (ProofFetcher, string) {
	if p.Proof.Protocol == ProtocolDNS {
		return c.dns, ""
	}
	if p.Proof.UseProxy && c.proxied != nil {
		return c.proxied, c.proxyHost
	}
	return c.direct, ""
}
