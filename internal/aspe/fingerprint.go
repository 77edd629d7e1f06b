package aspe

import (
	"crypto"
	_ "crypto/sha512"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/multiformats/go-multibase"
)

// fingerprintSize is how many bytes of the SHA-512 thumbprint make up a fingerprint.
const fingerprintSize = 16

// Fingerprint computes the ASPE fingerprint of a key: the first 16 bytes of its
// SHA-512 JWK thumbprint (RFC 7638), base32 encoded without padding.
func Fingerprint(key jwk.Key) (string, error) {
	tp, err := key.Thumbprint(crypto.SHA512)
	if err != nil {
		return "", fmt.Errorf("computing thumbprint: %w", err)
	}
	enc, err := multibase.Encode(multibase.Base32Upper, tp[:fingerprintSize])
	if err != nil {
		return "", fmt.Errorf("encoding fingerprint: %w", err)
	}
	// strip the multibase prefix
	return enc[1:], nil
}

// TokenFingerprint computes the fingerprint of the key a token declares, without verifying the token.
func TokenFingerprint(token string) (string, error) {
	desc, err := headerKey(token)
	if err != nil {
		return "", err
	}
	family := CurveFamilyOf(desc.Curve)
	if family == CurveUnsupported {
		return "", newError(ErrCodeUnsupportedAlgorithm, fmt.Errorf("curve %q", desc.Curve))
	}
	key, _, err := bindKey(family, desc)
	if err != nil {
		return "", newError(ErrCodeInvalidKey, err)
	}
	return Fingerprint(key)
}
