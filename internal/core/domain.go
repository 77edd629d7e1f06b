package core

// ProfileRecord holds the attributes of a profile as they were asserted in its verified payload.
// Every optional attribute is nil if it was absent or had an unexpected type.
type ProfileRecord struct {
	// URI identifies the subject of the profile (e.g. "aspe:keyoxide.org:TOICV3SYXNJP7E4P5AOK5DHW44").
	URI string `json:"profile_uri"`

	Version     *uint64 `json:"version,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`

	// Color is the display color of the profile as hex RGB (e.g. "#6855c3").
	Color *string `json:"color,omitempty"`

	// ClaimURIs are the claims in order of appearance in the payload.
	ClaimURIs []string `json:"claims"`
}

// ServiceProviderInfo describes the service a claim was verified against.
type ServiceProviderInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Homepage string `json:"homepage,omitempty"`
}

// VerificationResult is reported by a ClaimChecker for a claim it could confirm.
type VerificationResult struct {
	// ServiceProvider is the provider that confirmed the claim, if known.
	ServiceProvider *ServiceProviderInfo `json:"service_provider_info,omitempty"`

	// ProxyUsed is set if the proof was fetched through a proxy.
	ProxyUsed string `json:"proxy_used,omitempty"`
}

// ClaimOutcome is the verification outcome of a single claim URI.
// A nil Result means the claim could not be verified.
type ClaimOutcome struct {
	URI    string              `json:"uri"`
	Result *VerificationResult `json:"verification_result"`
}

// Verified reports whether the claim was confirmed by its service.
func (o ClaimOutcome) Verified() bool {
	return o.Result != nil
}

// Verified creates the outcome of a confirmed claim.
func Verified(uri string, result VerificationResult) ClaimOutcome {
	return ClaimOutcome{URI: uri, Result: &result}
}

// Unverified creates the outcome of a claim whose verification failed or errored.
func Unverified(uri string) ClaimOutcome {
	return ClaimOutcome{URI: uri}
}
