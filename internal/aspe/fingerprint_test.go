package aspe

import (
	"crypto/sha512"
	"encoding/base32"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	k := newEd25519Key(t)
	key, err := jwk.FromRaw(k.pub)
	require.NoError(t, err)

	fp, err := Fingerprint(key)
	require.NoError(t, err)

	// RFC 7638 members of an OKP key, in lexical order
	header := jwkMap(t, k.pub)
	canonical := `{"crv":"Ed25519","kty":"OKP","x":"` + header["x"].(string) + `"}`
	sum := sha512.Sum512([]byte(canonical))
	want := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:16])

	assert.Equal(t, want, fp)
	assert.Len(t, fp, 26)
	assert.Regexp(t, `^[A-Z2-7]+$`, fp)
}

func TestFingerprint_DiffersPerKey(t *testing.T) {
	a := newEd25519Key(t).fingerprintOf(t)
	b := newEd25519Key(t).fingerprintOf(t)
	c := newP256Key(t).fingerprintOf(t)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestTokenFingerprint(t *testing.T) {
	k := newP256Key(t)

	fp, err := TokenFingerprint(k.sign(t, profileClaims()))
	require.NoError(t, err)
	assert.Equal(t, k.fingerprintOf(t), fp)

	_, err = TokenFingerprint("not.a.token")
	assert.Equal(t, ErrCodeMalformedToken, CodeOf(err))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = TokenFingerprint(signWithHeaderKey(t, k.method, k.priv, nil, profileClaims()))
	assert.Equal(t, ErrCodeMissingKey, CodeOf(err))
	assert.ErrorIs(t, err, ErrAuthentication)
}
