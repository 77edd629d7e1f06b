package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/darmiel/doipv/internal/aspe"
	"github.com/darmiel/doipv/internal/claims"
	"github.com/darmiel/doipv/internal/config"
	"github.com/darmiel/doipv/internal/doip"
	"github.com/darmiel/doipv/internal/logging"
	"github.com/darmiel/doipv/internal/service"
	"github.com/darmiel/doipv/pkg/client"
)

// Factory builds the components shared by the commands from config file, env and flags.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// Remote reports whether commands should run against a remote server.
func (f *Factory) Remote() bool {
	return viper.GetString(ServerAddrKey) != ""
}

// GetClient returns a client for the server given via --server or DOIPV_SERVER.
func (f *Factory) GetClient() (*client.Client, error) {
	server := viper.GetString(ServerAddrKey)
	if server == "" {
		return nil, fmt.Errorf("server address not configured (use --server or set DOIPV_SERVER)")
	}
	return client.New(server)
}

// Config loads the configuration file in use (if any) and applies env and flag overrides.
func (f *Factory) Config() (*config.Config, error) {
	cfg := config.Default()
	if path := viper.ConfigFileUsed(); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if viper.IsSet(HTTPTimeoutKey) {
		cfg.HTTP.Timeout = viper.GetDuration(HTTPTimeoutKey)
	}
	if viper.IsSet(HTTPProxyKey) {
		cfg.HTTP.Proxy = viper.GetString(HTTPProxyKey)
	}
	if viper.IsSet(HTTPSkipVerifyKey) {
		cfg.HTTP.SkipVerifySSL = viper.GetBool(HTTPSkipVerifyKey)
	}
	if viper.IsSet(ClaimsConcurrencyKey) {
		cfg.Claims.Concurrency = viper.GetInt(ClaimsConcurrencyKey)
	}
	if viper.IsSet(ProvidersFileKey) {
		cfg.Claims.ProvidersFile = viper.GetString(ProvidersFileKey)
	}
	if viper.IsSet(StrictFingerprintKey) {
		cfg.Profile.StrictFingerprint = viper.GetBool(StrictFingerprintKey)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Registry returns the built-in service providers, extended by the configured providers file.
func (f *Factory) Registry(cfg *config.Config) (*doip.Registry, error) {
	registry, err := doip.DefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("loading built-in providers: %w", err)
	}
	if cfg.Claims.ProvidersFile != "" {
		extra, err := doip.LoadFile(cfg.Claims.ProvidersFile)
		if err != nil {
			return nil, fmt.Errorf("loading providers file: %w", err)
		}
		registry.Extend(extra...)
		log.Debug().Msgf("loaded %d providers from %s", len(extra), cfg.Claims.ProvidersFile)
	}
	return registry, nil
}

// Components are the pieces of a local verification pipeline.
type Components struct {
	Config       *config.Config
	Registry     *doip.Registry
	Orchestrator *claims.Orchestrator
	Verifier     *aspe.Verifier
}

func (f *Factory) Components() (*Components, error) {
	cfg, err := f.Config()
	if err != nil {
		return nil, err
	}
	registry, err := f.Registry(cfg)
	if err != nil {
		return nil, err
	}

	checker, err := doip.NewChecker(registry, doip.Options{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
		ProxyURL:  cfg.HTTP.Proxy,
	})
	if err != nil {
		return nil, fmt.Errorf("creating claim checker: %w", err)
	}

	var logger logging.InternalLogger = logging.Zerolog(log.Logger)
	if viper.GetBool(QuietKey) {
		logger = logging.Nop{}
	}

	orchestrator := claims.NewOrchestrator(checker,
		claims.WithLogger(logger),
		claims.WithConcurrency(cfg.Claims.Concurrency))

	fetcher := aspe.NewHTTPFetcher(aspe.FetchOptions{
		SkipVerifySSL: cfg.HTTP.SkipVerifySSL,
		Timeout:       cfg.HTTP.Timeout,
		UserAgent:     cfg.HTTP.UserAgent,
	})
	verifier := aspe.NewVerifier(fetcher, orchestrator,
		aspe.WithStrictFingerprint(cfg.Profile.StrictFingerprint),
		aspe.WithLogger(logger))

	return &Components{
		Config:       cfg,
		Registry:     registry,
		Orchestrator: orchestrator,
		Verifier:     verifier,
	}, nil
}

// GetLocalService returns a verification service without a profile cache.
func (f *Factory) GetLocalService() (*service.VerificationService, error) {
	c, err := f.Components()
	if err != nil {
		return nil, err
	}
	return service.NewVerificationService(c.Verifier, c.Orchestrator, nil), nil
}

// bindConfigFlags registers flags that override the configuration file.
func (f *Factory) bindConfigFlags(flags *pflag.FlagSet) {
	flags.Duration("timeout", 0, "Timeout of a single outgoing request (default from config, 10s)")
	_ = viper.BindPFlag(HTTPTimeoutKey, flags.Lookup("timeout"))

	flags.String("proxy", "", "Proxy URL for service providers that require one")
	_ = viper.BindPFlag(HTTPProxyKey, flags.Lookup("proxy"))

	flags.Int("concurrency", 0, "Maximum number of claims verified at the same time (0 = no limit)")
	_ = viper.BindPFlag(ClaimsConcurrencyKey, flags.Lookup("concurrency"))

	flags.String("providers", "", "YAML file with additional service provider definitions")
	_ = viper.BindPFlag(ProvidersFileKey, flags.Lookup("providers"))

	flags.Bool("skip-verify-ssl", false, "Do not validate TLS certificates when fetching profile tokens")
	_ = viper.BindPFlag(HTTPSkipVerifyKey, flags.Lookup("skip-verify-ssl"))

	flags.Bool("strict-fingerprint", false, "Reject profiles whose key does not match the fingerprint in the URI")
	_ = viper.BindPFlag(StrictFingerprintKey, flags.Lookup("strict-fingerprint"))
}
