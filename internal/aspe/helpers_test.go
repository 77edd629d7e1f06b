package aspe

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/require"
)

type testKey struct {
	method jwt.SigningMethod
	priv   crypto.Signer
	pub    crypto.PublicKey
}

func newEd25519Key(t *testing.T) testKey {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return testKey{method: jwt.SigningMethodEdDSA, priv: priv, pub: pub}
}

func newP256Key(t *testing.T) testKey {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return testKey{method: jwt.SigningMethodES256, priv: priv, pub: &priv.PublicKey}
}

// jwkMap returns the JWK of raw as it would appear in a token header.
func jwkMap(t *testing.T, raw any) map[string]any {
	t.Helper()
	key, err := jwk.FromRaw(raw)
	require.NoError(t, err)
	data, err := json.Marshal(key)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

// fingerprintOf returns the fingerprint of the public part of k.
func (k testKey) fingerprintOf(t *testing.T) string {
	t.Helper()
	key, err := jwk.FromRaw(k.pub)
	require.NoError(t, err)
	fp, err := Fingerprint(key)
	require.NoError(t, err)
	return fp
}

// sign creates a token signed by k that carries k's public key in its header.
func (k testKey) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	return signWithHeaderKey(t, k.method, k.priv, jwkMap(t, k.pub), claims)
}

func signWithHeaderKey(t *testing.T, method jwt.SigningMethod, signingKey any, headerKey map[string]any, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, claims)
	if headerKey != nil {
		tok.Header["jwk"] = headerKey
	}
	tok.Header["typ"] = "JWT"
	signed, err := tok.SignedString(signingKey)
	require.NoError(t, err)
	return signed
}

func profileClaims(claims ...string) jwt.MapClaims {
	list := make([]any, 0, len(claims))
	for _, c := range claims {
		list = append(list, c)
	}
	return jwt.MapClaims{
		AttrVersion: 0,
		AttrType:    "profile",
		AttrName:    "Alice",
		AttrColor:   "#6855c3",
		AttrClaims:  list,
	}
}
