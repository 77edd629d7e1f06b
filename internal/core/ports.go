package core

import "context"

// ClaimMatch is a service provider that a claim URI was matched against,
// together with the values captured from the URI (e.g. the account name).
type ClaimMatch struct {
	Provider ServiceProviderInfo
	Captures map[string]string
}

// ClaimChecker confirms that a claim URI points to an account that references the subject.
// Implementations must be safe for concurrent use.
type ClaimChecker interface {
	// FindMatches determines which services the claim URI may refer to. No network access.
	FindMatches(claimURI string) ([]ClaimMatch, error)

	// Verify contacts the matched services and confirms the claim for the subject.
	Verify(ctx context.Context, claimURI, subjectURI string, matches []ClaimMatch) (*VerificationResult, error)
}
