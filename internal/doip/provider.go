package doip

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/darmiel/doipv/internal/core"
)

const (
	ProtocolHTTP = "http"
	ProtocolDNS  = "dns"

	FormatText = "text"
	FormatJSON = "json"
)

// Definition describes a service provider as written in a providers file.
type Definition struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Homepage string `mapstructure:"homepage"`

	// Match is a regular expression for claim URIs of this provider.
	// Named groups (e.g. (?P<user>...)) can be used in the proof templates and in Check.
	Match string `mapstructure:"match"`

	Proof ProofDefinition `mapstructure:"proof"`

	// Check is an optional expression that decides whether the fetched proof references the subject.
	// Available variables: body (string), doc (parsed JSON, if format is json), subject, groups.
	// If empty, the proof body must contain the subject URI (case-insensitive).
	Check string `mapstructure:"check"`
}

// ProofDefinition tells how to fetch the proof of a claim.
type ProofDefinition struct {
	Protocol string `mapstructure:"protocol"`

	// URL is the template of the document to fetch (http).
	URL string `mapstructure:"url"`

	// Target is the template of the domain name to query TXT records for (dns).
	Target string `mapstructure:"target"`

	Format string `mapstructure:"format"`

	// UseProxy sends the request through the configured proxy, if any.
	UseProxy bool `mapstructure:"use_proxy"`
}

// checkEnv is the environment Check expressions are evaluated in.
type checkEnv struct {
	Body    string            `expr:"body"`
	Doc     any               `expr:"doc"`
	Subject string            `expr:"subject"`
	Groups  map[string]string `expr:"groups"`
}

// Provider is a validated, compiled service provider definition.
type Provider struct {
	Info    core.ServiceProviderInfo
	Proof   ProofDefinition
	pattern *regexp.Regexp
	check   *vm.Program
	expr    string
}

// Compile validates a definition and prepares its pattern and check expression.
func Compile(def Definition) (*Provider, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("provider is missing 'id'")
	}
	if def.Match == "" {
		return nil, fmt.Errorf("provider '%s' is missing 'match'", def.ID)
	}
	pattern, err := regexp.Compile(def.Match)
	if err != nil {
		return nil, fmt.Errorf("compiling match of provider '%s': %w", def.ID, err)
	}

	proof := def.Proof
	if proof.Protocol == "" {
		proof.Protocol = ProtocolHTTP
	}
	if proof.Format == "" {
		proof.Format = FormatText
	}
	switch proof.Protocol {
	case ProtocolHTTP:
		if proof.URL == "" {
			return nil, fmt.Errorf("provider '%s' is missing 'proof.url'", def.ID)
		}
	case ProtocolDNS:
		if proof.Target == "" {
			return nil, fmt.Errorf("provider '%s' is missing 'proof.target'", def.ID)
		}
	default:
		return nil, fmt.Errorf("provider '%s' has unknown protocol '%s'", def.ID, proof.Protocol)
	}
	if proof.Format != FormatText && proof.Format != FormatJSON {
		return nil, fmt.Errorf("provider '%s' has unknown format '%s'", def.ID, proof.Format)
	}

	p := &Provider{
		Info: core.ServiceProviderInfo{
			ID:       def.ID,
			Name:     def.Name,
			Homepage: def.Homepage,
		},
		Proof:   proof,
		pattern: pattern,
		expr:    def.Check,
	}
	if p.Info.Name == "" {
		p.Info.Name = def.ID
	}
	if def.Check != "" {
		program, err := expr.Compile(def.Check, expr.Env(checkEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compiling check of provider '%s': %w", def.ID, err)
		}
		p.check = program
	}
	return p, nil
}

// Match returns the named groups captured from the claim URI, or false if the URI is not for this provider.
func (p *Provider) Match(claimURI string) (map[string]string, bool) {
	m := p.pattern.FindStringSubmatch(claimURI)
	if m == nil {
		return nil, false
	}
	captures := make(map[string]string)
	for i, name := range p.pattern.SubexpNames() {
		if name != "" && i < len(m) {
			captures[name] = m[i]
		}
	}
	return captures, true
}

func (p *Provider) Pattern() string {
	return p.pattern.String()
}

func (p *Provider) CheckExpr() string {
	return p.expr
}

// target expands the proof template with the captured groups.
func (p *Provider) target(captures map[string]string) string {
	if p.Proof.Protocol == ProtocolDNS {
		return expand(p.Proof.Target, captures, false)
	}
	return expand(p.Proof.URL, captures, true)
}

func expand(template string, captures map[string]string, escape bool) string {
	pairs := make([]string, 0, len(captures)*2)
	for k, v := range captures {
		if escape {
			v = url.PathEscape(v)
		}
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// evaluate decides whether the fetched proof references the subject.
func (p *Provider) evaluate(body []byte, doc any, subject string, captures map[string]string) (bool, error) {
	if p.check == nil {
		return strings.Contains(strings.ToLower(string(body)), strings.ToLower(subject)), nil
	}
	out, err := expr.Run(p.check, checkEnv{
		Body:    string(body),
		Doc:     doc,
		Subject: subject,
		Groups:  captures,
	})
	if err != nil {
		return false, fmt.Errorf("evaluating check: %w", err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
