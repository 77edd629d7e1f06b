package aspe

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// CurveFamily is the signature algorithm family selected from the curve a key declares.
type CurveFamily int

const (
	CurveUnsupported CurveFamily = iota
	CurveEd25519
	CurveP256
)

// Curve tags accepted at the wire boundary. Anything else is rejected.
const (
	CurveTagEd25519 = "Ed25519"
	CurveTagP256    = "P-256"
)

// CurveFamilyOf maps the "crv" parameter of a JWK to its family.
func CurveFamilyOf(tag string) CurveFamily {
	switch tag {
	case CurveTagEd25519:
		return CurveEd25519
	case CurveTagP256:
		return CurveP256
	default:
		return CurveUnsupported
	}
}

func (c CurveFamily) String() string {
	switch c {
	case CurveEd25519:
		return CurveTagEd25519
	case CurveP256:
		return CurveTagP256
	default:
		return "unsupported"
	}
}

// signingMethod is the only JWS algorithm accepted for keys of this family.
func (c CurveFamily) signingMethod() jwt.SigningMethod {
	switch c {
	case CurveEd25519:
		return jwt.SigningMethodEdDSA
	case CurveP256:
		return jwt.SigningMethodES256
	default:
		return nil
	}
}

// KeyDescriptor is the key a token declares in its own header.
// It is the claimant's assertion and nothing about it is trusted yet.
type KeyDescriptor struct {
	KeyType string
	Curve   string
	JWK     map[string]any
}

// VerifiedToken is only ever created from a token whose signature was checked against Key.
type VerifiedToken struct {
	Payload map[string]any
	Header  map[string]any
	Key     jwk.Key
}

// ExtractKey reads the "jwk" object of the token header. Only the header segment is looked at.
// It reports false if the header can't be decoded or holds no structured key.
func ExtractKey(token string) (*KeyDescriptor, bool) {
	header, ok := decodeHeader(token)
	if !ok {
		return nil, false
	}
	raw, ok := header["jwk"].(map[string]any)
	if !ok {
		return nil, false
	}
	kty, ok := raw["kty"].(string)
	if !ok || kty == "" {
		return nil, false
	}
	// an absent crv is left empty and rejected by SelectAndVerify as unsupported
	crv, _ := raw["crv"].(string)
	return &KeyDescriptor{
		KeyType: kty,
		Curve:   crv,
		JWK:     raw,
	}, true
}

// headerKey is ExtractKey with errors: a header that doesn't decode is malformed,
// a decodable header without a usable "jwk" is a missing key.
func headerKey(token string) (*KeyDescriptor, error) {
	if _, ok := decodeHeader(token); !ok {
		return nil, newError(ErrCodeMalformedToken, errors.New("token header cannot be decoded"))
	}
	desc, ok := ExtractKey(token)
	if !ok {
		return nil, newError(ErrCodeMissingKey, errors.New("token header has no usable 'jwk'"))
	}
	return desc, nil
}

func decodeHeader(token string) (map[string]any, bool) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, false
	}
	data, err := jwt.NewParser().DecodeSegment(parts[0])
	if err != nil {
		return nil, false
	}
	var header map[string]any
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, false
	}
	return header, true
}

// SelectAndVerify picks the algorithm for the descriptor's curve, binds the key and verifies the token with it.
// This is the trust boundary: the payload is not read before the signature checks out.
func SelectAndVerify(desc *KeyDescriptor, token string) (*VerifiedToken, error) {
	if desc == nil {
		return nil, newError(ErrCodeMissingKey, nil)
	}

	family := CurveFamilyOf(desc.Curve)
	if family == CurveUnsupported {
		return nil, newError(ErrCodeUnsupportedAlgorithm, fmt.Errorf("curve %q", desc.Curve))
	}

	key, pub, err := bindKey(family, desc)
	if err != nil {
		return nil, newError(ErrCodeInvalidKey, err)
	}

	method := family.signingMethod()
	parsed, err := jwt.Parse(strings.TrimSpace(token), func(*jwt.Token) (any, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{method.Alg()}), jwt.WithJSONNumber())
	if err != nil {
		return nil, newError(ErrCodeSignatureInvalid, err)
	}
	if !parsed.Valid {
		return nil, newError(ErrCodeSignatureInvalid, errors.New("token is not valid"))
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, newError(ErrCodeSignatureInvalid, errors.New("unexpected claims type"))
	}

	return &VerifiedToken{
		Payload: claims,
		Header:  parsed.Header,
		Key:     key,
	}, nil
}

// bindKey turns the descriptor into a public key of the selected family.
func bindKey(family CurveFamily, desc *KeyDescriptor) (jwk.Key, crypto.PublicKey, error) {
	if _, ok := desc.JWK["d"]; ok {
		return nil, nil, errors.New("header key contains private key material")
	}

	data, err := json.Marshal(desc.JWK)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding jwk: %w", err)
	}
	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing jwk: %w", err)
	}

	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, nil, fmt.Errorf("exporting jwk: %w", err)
	}

	switch family {
	case CurveEd25519:
		pub, ok := raw.(ed25519.PublicKey)
		if !ok || len(pub) != ed25519.PublicKeySize {
			return nil, nil, fmt.Errorf("expected an Ed25519 public key, got %T", raw)
		}
		return key, pub, nil
	case CurveP256:
		pub, ok := raw.(*ecdsa.PublicKey)
		if !ok || pub.Curve != elliptic.P256() {
			return nil, nil, fmt.Errorf("expected a P-256 public key, got %T", raw)
		}
		return key, pub, nil
	default:
		return nil, nil, fmt.Errorf("no key binding for %s", family)
	}
}
