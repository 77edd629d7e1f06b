package core

import (
	"encoding/json"
	"slices"
)

// VerifiedProfile is a profile whose signature was verified, together with the outcome of every claim.
// It is assembled once all claim checks have finished and is read-only afterward.
type VerifiedProfile struct {
	record      ProfileRecord
	fingerprint string
	outcomes    []ClaimOutcome
}

// NewVerifiedProfile assembles a profile from its record and claim outcomes.
// The outcomes are expected in the same order as record.ClaimURIs.
func NewVerifiedProfile(record ProfileRecord, fingerprint string, outcomes []ClaimOutcome) *VerifiedProfile {
	record.ClaimURIs = slices.Clone(record.ClaimURIs)
	return &VerifiedProfile{
		record:      record,
		fingerprint: fingerprint,
		outcomes:    slices.Clone(outcomes),
	}
}

func (p *VerifiedProfile) URI() string {
	return p.record.URI
}

// Fingerprint of the key that signed the profile.
func (p *VerifiedProfile) Fingerprint() string {
	return p.fingerprint
}

func (p *VerifiedProfile) Version() (uint64, bool) {
	if p.record.Version == nil {
		return 0, false
	}
	return *p.record.Version, true
}

func (p *VerifiedProfile) Name() (string, bool) {
	return deref(p.record.Name)
}

func (p *VerifiedProfile) Description() (string, bool) {
	return deref(p.record.Description)
}

func (p *VerifiedProfile) Color() (string, bool) {
	return deref(p.record.Color)
}

// Record returns a copy of the decoded profile attributes.
func (p *VerifiedProfile) Record() ProfileRecord {
	r := p.record
	r.ClaimURIs = slices.Clone(r.ClaimURIs)
	return r
}

// Claims returns a copy of the claim outcomes in payload order.
func (p *VerifiedProfile) Claims() []ClaimOutcome {
	return slices.Clone(p.outcomes)
}

// VerifiedCount returns how many claims were confirmed.
func (p *VerifiedProfile) VerifiedCount() int {
	n := 0
	for _, o := range p.outcomes {
		if o.Verified() {
			n++
		}
	}
	return n
}

type verifiedProfileJSON struct {
	ProfileURI     string         `json:"profile_uri"`
	Fingerprint    string         `json:"fingerprint,omitempty"`
	Version        *uint64        `json:"version"`
	Name           *string        `json:"name"`
	Description    *string        `json:"description"`
	Color          *string        `json:"color"`
	VerifiedProofs []ClaimOutcome `json:"verified_proofs"`
}

func (p *VerifiedProfile) MarshalJSON() ([]byte, error) {
	proofs := p.outcomes
	if proofs == nil {
		proofs = []ClaimOutcome{}
	}
	return json.Marshal(verifiedProfileJSON{
		ProfileURI:     p.record.URI,
		Fingerprint:    p.fingerprint,
		Version:        p.record.Version,
		Name:           p.record.Name,
		Description:    p.record.Description,
		Color:          p.record.Color,
		VerifiedProofs: proofs,
	})
}

func (p *VerifiedProfile) UnmarshalJSON(data []byte) error {
	var raw verifiedProfileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	claimURIs := make([]string, 0, len(raw.VerifiedProofs))
	for _, o := range raw.VerifiedProofs {
		claimURIs = append(claimURIs, o.URI)
	}
	*p = VerifiedProfile{
		record: ProfileRecord{
			URI:         raw.ProfileURI,
			Version:     raw.Version,
			Name:        raw.Name,
			Description: raw.Description,
			Color:       raw.Color,
			ClaimURIs:   claimURIs,
		},
		fingerprint: raw.Fingerprint,
		outcomes:    raw.VerifiedProofs,
	}
	return nil
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
