package aspe

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveFamilyOf(t *testing.T) {
	tests := []struct {
		tag  string
		want CurveFamily
	}{
		{"Ed25519", CurveEd25519},
		{"P-256", CurveP256},
		{"ed25519", CurveUnsupported},
		{"p-256", CurveUnsupported},
		{"secp256k1", CurveUnsupported},
		{"P-384", CurveUnsupported},
		{"Ed448", CurveUnsupported},
		{"", CurveUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, CurveFamilyOf(tt.tag))
		})
	}
}

func TestExtractKey(t *testing.T) {
	ed := newEd25519Key(t)

	t.Run("ed25519 header key", func(t *testing.T) {
		desc, ok := ExtractKey(ed.sign(t, profileClaims()))
		require.True(t, ok)
		assert.Equal(t, "OKP", desc.KeyType)
		assert.Equal(t, "Ed25519", desc.Curve)
		assert.NotEmpty(t, desc.JWK["x"])
	})

	t.Run("p256 header key", func(t *testing.T) {
		p := newP256Key(t)
		desc, ok := ExtractKey(p.sign(t, profileClaims()))
		require.True(t, ok)
		assert.Equal(t, "EC", desc.KeyType)
		assert.Equal(t, "P-256", desc.Curve)
	})

	t.Run("key type without curve", func(t *testing.T) {
		token := signWithHeaderKey(t, jwt.SigningMethodHS256, []byte("secret"),
			map[string]any{"kty": "oct", "k": "c2VjcmV0"}, jwt.MapClaims{})
		desc, ok := ExtractKey(token)
		require.True(t, ok)
		assert.Equal(t, "oct", desc.KeyType)
		assert.Empty(t, desc.Curve)
	})

	invalid := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jws", "hello"},
		{"two segments", "a.b"},
		{"header not base64", "!!!.e30.sig"},
		{"header not json", base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".e30.sig"},
		{"no jwk", signWithHeaderKey(t, ed.method, ed.priv, nil, jwt.MapClaims{})},
		{"jwk is a string", headerOnly(`{"alg":"EdDSA","jwk":"abc"}`)},
		{"jwk without kty", headerOnly(`{"alg":"EdDSA","jwk":{"crv":"Ed25519","x":"abc"}}`)},
		{"kty not a string", headerOnly(`{"alg":"EdDSA","jwk":{"kty":1,"crv":"Ed25519"}}`)},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			desc, ok := ExtractKey(tt.token)
			assert.False(t, ok)
			assert.Nil(t, desc)
		})
	}
}

func headerOnly(header string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(header)) + ".e30.c2ln"
}

func TestSelectAndVerify(t *testing.T) {
	t.Run("ed25519", func(t *testing.T) {
		k := newEd25519Key(t)
		token := k.sign(t, profileClaims("dns:example.org"))
		desc, ok := ExtractKey(token)
		require.True(t, ok)

		verified, err := SelectAndVerify(desc, token)
		require.NoError(t, err)
		assert.Equal(t, "Alice", verified.Payload[AttrName])
		assert.Equal(t, "EdDSA", verified.Header["alg"])
		require.NotNil(t, verified.Key)
	})

	t.Run("p256", func(t *testing.T) {
		k := newP256Key(t)
		token := k.sign(t, profileClaims())
		desc, ok := ExtractKey(token)
		require.True(t, ok)

		verified, err := SelectAndVerify(desc, token)
		require.NoError(t, err)
		assert.Equal(t, "ES256", verified.Header["alg"])
	})

	t.Run("nil descriptor", func(t *testing.T) {
		_, err := SelectAndVerify(nil, "a.b.c")
		assert.Equal(t, ErrCodeMissingKey, CodeOf(err))
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("unsupported curve", func(t *testing.T) {
		token := signWithHeaderKey(t, jwt.SigningMethodHS256, []byte("secret"),
			map[string]any{"kty": "EC", "crv": "secp256k1", "x": "AA", "y": "AA"}, jwt.MapClaims{})
		desc, ok := ExtractKey(token)
		require.True(t, ok)

		_, err := SelectAndVerify(desc, token)
		assert.Equal(t, ErrCodeUnsupportedAlgorithm, CodeOf(err))
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("no curve", func(t *testing.T) {
		k := newEd25519Key(t)
		header := jwkMap(t, k.pub)
		delete(header, "crv")
		token := signWithHeaderKey(t, k.method, k.priv, header, profileClaims())

		desc, ok := ExtractKey(token)
		require.True(t, ok)
		assert.Empty(t, desc.Curve)

		_, err := SelectAndVerify(desc, token)
		assert.Equal(t, ErrCodeUnsupportedAlgorithm, CodeOf(err))
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("tampered payload", func(t *testing.T) {
		k := newEd25519Key(t)
		token := k.sign(t, profileClaims())
		parts := strings.Split(token, ".")
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"http://ariadne.id/name":"Mallory"}`))
		tampered := strings.Join(parts, ".")

		desc, ok := ExtractKey(tampered)
		require.True(t, ok)
		_, err := SelectAndVerify(desc, tampered)
		assert.Equal(t, ErrCodeSignatureInvalid, CodeOf(err))
	})

	t.Run("signed by another key", func(t *testing.T) {
		signer := newEd25519Key(t)
		claimed := newEd25519Key(t)
		token := signWithHeaderKey(t, signer.method, signer.priv, jwkMap(t, claimed.pub), profileClaims())

		desc, ok := ExtractKey(token)
		require.True(t, ok)
		_, err := SelectAndVerify(desc, token)
		assert.Equal(t, ErrCodeSignatureInvalid, CodeOf(err))
	})

	t.Run("algorithm confusion", func(t *testing.T) {
		k := newEd25519Key(t)
		// HMAC keyed with the public key bytes must never pass as an Ed25519 signature
		token := signWithHeaderKey(t, jwt.SigningMethodHS256, []byte(k.pub.(ed25519.PublicKey)),
			jwkMap(t, k.pub), profileClaims())

		desc, ok := ExtractKey(token)
		require.True(t, ok)
		_, err := SelectAndVerify(desc, token)
		assert.Equal(t, ErrCodeSignatureInvalid, CodeOf(err))
	})

	t.Run("es256 with ed25519 key", func(t *testing.T) {
		ed := newEd25519Key(t)
		p := newP256Key(t)
		token := signWithHeaderKey(t, p.method, p.priv, jwkMap(t, ed.pub), profileClaims())

		desc, ok := ExtractKey(token)
		require.True(t, ok)
		_, err := SelectAndVerify(desc, token)
		assert.Equal(t, ErrCodeSignatureInvalid, CodeOf(err))
	})

	t.Run("private key in header", func(t *testing.T) {
		k := newEd25519Key(t)
		token := signWithHeaderKey(t, k.method, k.priv, jwkMap(t, k.priv), profileClaims())

		desc, ok := ExtractKey(token)
		require.True(t, ok)
		_, err := SelectAndVerify(desc, token)
		assert.Equal(t, ErrCodeInvalidKey, CodeOf(err))
	})

	t.Run("curve does not fit key type", func(t *testing.T) {
		k := newEd25519Key(t)
		header := jwkMap(t, k.pub)
		header["crv"] = "P-256"
		token := signWithHeaderKey(t, k.method, k.priv, header, profileClaims())

		desc, ok := ExtractKey(token)
		require.True(t, ok)
		_, err := SelectAndVerify(desc, token)
		assert.Equal(t, ErrCodeInvalidKey, CodeOf(err))
	})
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		code ErrorCode
		kind error
	}{
		{ErrCodeMalformedURI, ErrMalformed},
		{ErrCodeMalformedToken, ErrMalformed},
		{ErrCodeMissingKey, ErrAuthentication},
		{ErrCodeSignatureInvalid, ErrAuthentication},
		{ErrCodeFingerprintMismatch, ErrAuthentication},
		{ErrCodeFetchFailed, ErrTransport},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			cause := errors.New("cause")
			err := newError(tt.code, cause)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, cause)
			assert.Equal(t, tt.code, CodeOf(err))
		})
	}
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}
