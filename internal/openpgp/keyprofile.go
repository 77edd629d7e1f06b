package openpgp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/darmiel/doipv/internal/core"
)

// SubjectScheme prefixes the fingerprint in the subject URI proofs have to reference.
const SubjectScheme = "openpgp4fpr"

var (
	ErrInvalidMapping = errors.New("invalid proof mapping")

	// maxMappingSize caps how much is read from stdin.
	maxMappingSize int64 = 4 << 20

	fingerprintPattern = regexp.MustCompile(`^([0-9A-F]{40}|[0-9A-F]{64})$`)
)

// ProofMapping is the list of proofs per user ID of an OpenPGP certificate.
// Extracting it from the certificate happens elsewhere; this is what it looks like afterward.
type ProofMapping struct {
	Fingerprint string         `yaml:"fingerprint" json:"fingerprint"`
	UserIDs     []UserIDProofs `yaml:"user_ids" json:"user_ids"`
}

type UserIDProofs struct {
	// UserID is the full user ID. If empty, it is built from Name and Email.
	UserID string   `yaml:"user_id,omitempty" json:"user_id,omitempty"`
	Name   string   `yaml:"name,omitempty" json:"name,omitempty"`
	Email  string   `yaml:"email,omitempty" json:"email,omitempty"`
	Proofs []string `yaml:"proofs" json:"proofs"`
}

// Label returns how the user ID is displayed.
func (u UserIDProofs) Label() string {
	if u.UserID != "" {
		return u.UserID
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

// ParseMapping decodes a proof mapping from YAML or JSON and normalizes its fingerprint.
func ParseMapping(data []byte) (*ProofMapping, error) {
	var m ProofMapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	if err := m.Normalize(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadMapping reads a proof mapping file. A path of "-" reads from stdin.
func LoadMapping(path string) (*ProofMapping, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(os.Stdin, maxMappingSize))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading proof mapping: %w", err)
	}
	return ParseMapping(data)
}

// Normalize uppercases the fingerprint and validates the mapping.
func (m *ProofMapping) Normalize() error {
	fp := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(m.Fingerprint), " ", ""))
	if !fingerprintPattern.MatchString(fp) {
		return fmt.Errorf("%w: fingerprint '%s' is not a v4 or v6 fingerprint", ErrInvalidMapping, m.Fingerprint)
	}
	m.Fingerprint = fp
	for i, u := range m.UserIDs {
		if u.UserID == "" && u.Name == "" && u.Email == "" {
			return fmt.Errorf("%w: user id #%d has no label", ErrInvalidMapping, i)
		}
	}
	return nil
}

// SubjectURI is the URI the proofs of this key must reference.
func (m *ProofMapping) SubjectURI() string {
	return SubjectScheme + ":" + m.Fingerprint
}

// ClaimVerifier verifies a list of claims for a subject, keeping their order.
type ClaimVerifier interface {
	VerifyAll(ctx context.Context, subjectURI string, claimURIs []string) ([]core.ClaimOutcome, error)
}

// KeyProfile is an OpenPGP key together with the verified proofs of each of its user IDs.
type KeyProfile struct {
	Fingerprint  string           `json:"fingerprint"`
	ProofURI     string           `json:"proof_uri"`
	UserIDProofs []UserIDOutcomes `json:"userid_proofs"`
}

type UserIDOutcomes struct {
	UserID string              `json:"userid"`
	Proofs []core.ClaimOutcome `json:"proofs"`
}

// VerifiedCount returns how many proofs over all user IDs were confirmed.
func (p *KeyProfile) VerifiedCount() (verified, total int) {
	for _, u := range p.UserIDProofs {
		for _, o := range u.Proofs {
			total++
			if o.Verified() {
				verified++
			}
		}
	}
	return verified, total
}

// Verify checks the proofs of all user IDs in one batch.
// User IDs and their proofs keep the order of the mapping.
func Verify(ctx context.Context, claims ClaimVerifier, m *ProofMapping) (*KeyProfile, error) {
	subject := m.SubjectURI()

	var all []string
	for _, u := range m.UserIDs {
		all = append(all, u.Proofs...)
	}

	outcomes, err := claims.VerifyAll(ctx, subject, all)
	if err != nil {
		return nil, fmt.Errorf("verifying proofs: %w", err)
	}
	if len(outcomes) != len(all) {
		return nil, fmt.Errorf("verifying proofs: got %d outcomes for %d proofs", len(outcomes), len(all))
	}

	profile := &KeyProfile{
		Fingerprint:  m.Fingerprint,
		ProofURI:     subject,
		UserIDProofs: make([]UserIDOutcomes, 0, len(m.UserIDs)),
	}
	offset := 0
	for _, u := range m.UserIDs {
		proofs := make([]core.ClaimOutcome, len(u.Proofs))
		copy(proofs, outcomes[offset:offset+len(u.Proofs)])
		offset += len(u.Proofs)
		profile.UserIDProofs = append(profile.UserIDProofs, UserIDOutcomes{
			UserID: u.Label(),
			Proofs: proofs,
		})
	}
	return profile, nil
}
