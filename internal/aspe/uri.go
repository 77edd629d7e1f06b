package aspe

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// Scheme of ASPE profile URIs.
	Scheme = "aspe"

	// WellKnownIDPath is where a domain serves profile tokens, followed by the local part.
	WellKnownIDPath = "/.well-known/aspe/id/"

	// JWSMediaType is requested when fetching profile tokens.
	JWSMediaType = "application/asp+jwt; charset=UTF-8"
)

var (
	domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*(:[0-9]{1,5})?$`)
	localPattern  = regexp.MustCompile(`^[A-Z2-7]+$`)
)

// URI identifies an ASPE profile: aspe:<domain-part>:<local-part>.
// The local part is the fingerprint of the profile key.
type URI struct {
	Domain string
	Local  string
}

// ParseURI parses and normalizes an ASPE URI.
func ParseURI(s string) (URI, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || !strings.EqualFold(scheme, Scheme) {
		return URI{}, newError(ErrCodeMalformedURI, fmt.Errorf("%q does not start with '%s:'", s, Scheme))
	}
	// the domain part might carry a port, so the local part is everything after the last colon
	idx := strings.LastIndex(rest, ":")
	if idx < 0 {
		return URI{}, newError(ErrCodeMalformedURI, fmt.Errorf("%q is missing the local part", s))
	}
	u := URI{
		Domain: strings.ToLower(rest[:idx]),
		Local:  strings.ToUpper(rest[idx+1:]),
	}
	if !domainPattern.MatchString(u.Domain) {
		return URI{}, newError(ErrCodeMalformedURI, fmt.Errorf("invalid domain part %q", u.Domain))
	}
	if !localPattern.MatchString(u.Local) {
		return URI{}, newError(ErrCodeMalformedURI, fmt.Errorf("invalid local part %q", u.Local))
	}
	return u, nil
}

func (u URI) String() string {
	return Scheme + ":" + u.Domain + ":" + u.Local
}

// ProfileURL is the HTTPS location of the profile token.
func (u URI) ProfileURL() string {
	return "https://" + u.Domain + WellKnownIDPath + u.Local
}
