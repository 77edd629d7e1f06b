package doip

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/doipv/internal/core"
)

//go:embed providers.yaml
var defaultProviders []byte

type providersFile struct {
	Providers []map[string]any `yaml:"providers"`
}

// Registry holds the known service providers in match order.
type Registry struct {
	providers []*Provider
	byID      map[string]*Provider
}

func NewRegistry(providers ...*Provider) (*Registry, error) {
	r := &Registry{
		byID: make(map[string]*Provider),
	}
	for _, p := range providers {
		if _, exists := r.byID[p.Info.ID]; exists {
			return nil, fmt.Errorf("provider id '%s' is not unique", p.Info.ID)
		}
		r.byID[p.Info.ID] = p
		r.providers = append(r.providers, p)
	}
	return r, nil
}

// DefaultRegistry returns a registry of the built-in providers.
func DefaultRegistry() (*Registry, error) {
	providers, err := Parse(defaultProviders)
	if err != nil {
		return nil, fmt.Errorf("parsing built-in providers: %w", err)
	}
	return NewRegistry(providers...)
}

// LoadFile reads provider definitions from a YAML (or JSON) file.
func LoadFile(path string) ([]*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading providers file: %w", err)
	}
	providers, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing providers file '%s': %w", path, err)
	}
	return providers, nil
}

// Parse decodes and compiles a list of provider definitions.
func Parse(data []byte) ([]*Provider, error) {
	var file providersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	providers := make([]*Provider, 0, len(file.Providers))
	for idx, raw := range file.Providers {
		var def Definition
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			Result:           &def,
		})
		if err != nil {
			return nil, fmt.Errorf("creating decoder for provider #%d: %w", idx, err)
		}
		if err := decoder.Decode(raw); err != nil {
			return nil, fmt.Errorf("decoding provider #%d: %w", idx, err)
		}
		p, err := Compile(def)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// Extend adds providers to the registry. A provider with a known id replaces the existing one in place.
func (r *Registry) Extend(providers ...*Provider) {
	for _, p := range providers {
		if _, exists := r.byID[p.Info.ID]; exists {
			for i, old := range r.providers {
				if old.Info.ID == p.Info.ID {
					r.providers[i] = p
				}
			}
		} else {
			r.providers = append(r.providers, p)
		}
		r.byID[p.Info.ID] = p
	}
}

func (r *Registry) Get(id string) (*Provider, bool) {
	p, ok := r.byID[id]
	return p, ok
}

func (r *Registry) Providers() []*Provider {
	out := make([]*Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// FindMatches returns every provider the claim URI matches, in registry order.
func (r *Registry) FindMatches(claimURI string) []core.ClaimMatch {
	var matches []core.ClaimMatch
	for _, p := range r.providers {
		if captures, ok := p.Match(claimURI); ok {
			matches = append(matches, core.ClaimMatch{
				Provider: p.Info,
				Captures: captures,
			})
		}
	}
	return matches
}
