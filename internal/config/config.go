package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/darmiel/doipv/internal/buildinfo"
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Claims  ClaimsConfig  `yaml:"claims"`
	Profile ProfileConfig `yaml:"profile"`
	Server  ServerConfig  `yaml:"server"`
}

// HTTPConfig holds settings for outgoing requests (profile tokens and proofs).
type HTTPConfig struct {
	// Timeout of a single request.
	Timeout time.Duration `yaml:"timeout"`

	UserAgent string `yaml:"user_agent"`

	// Proxy is used for service providers that require it.
	// For example, "http://proxy.example.org:3128".
	Proxy string `yaml:"proxy"`

	// SkipVerifySSL disables certificate validation when fetching profile tokens.
	SkipVerifySSL bool `yaml:"skip_verify_ssl"`
}

// ClaimsConfig holds settings for claim verification.
type ClaimsConfig struct {
	// Concurrency limits how many claims of a profile are verified at the same time.
	// 0 means no limit.
	Concurrency int `yaml:"concurrency"`

	// ProvidersFile contains additional service provider definitions.
	ProvidersFile string `yaml:"providers_file"`
}

type ProfileConfig struct {
	// StrictFingerprint rejects ASPE profiles whose key does not match the fingerprint in the URI.
	StrictFingerprint bool `yaml:"strict_fingerprint"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`

	// CacheTTL is how long verified profiles are served from cache. 0 disables the cache.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// PurgeInterval is how often expired cache entries are removed.
	PurgeInterval time.Duration `yaml:"purge_interval"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: buildinfo.UserAgent(),
		},
		Claims: ClaimsConfig{
			Concurrency: 16,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			CacheTTL:      5 * time.Minute,
			PurgeInterval: time.Minute,
		},
	}
}

// Load reads and parses the configuration file at the given path.
// Settings missing from the file keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	if c.HTTP.Proxy != "" {
		u, err := url.Parse(c.HTTP.Proxy)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("http.proxy '%s' is not a valid url", c.HTTP.Proxy)
		}
	}
	if c.Claims.Concurrency < 0 {
		return fmt.Errorf("claims.concurrency must not be negative")
	}
	if c.Claims.ProvidersFile != "" {
		if _, err := os.Stat(c.Claims.ProvidersFile); err != nil {
			return fmt.Errorf("claims.providers_file: %w", err)
		}
	}
	if c.Server.CacheTTL < 0 {
		return fmt.Errorf("server.cache_ttl must not be negative")
	}
	if c.Server.CacheTTL > 0 && c.Server.PurgeInterval <= 0 {
		return fmt.Errorf("server.purge_interval must be positive when the cache is enabled")
	}
	return nil
}
