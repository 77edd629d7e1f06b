package render

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/doipv/internal/core"
	"github.com/darmiel/doipv/internal/openpgp"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func testProfile(outcomes ...core.ClaimOutcome) *core.VerifiedProfile {
	name := "Alice"
	c := "#6855c3"
	version := uint64(0)
	uris := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		uris = append(uris, o.URI)
	}
	return core.NewVerifiedProfile(core.ProfileRecord{
		URI:       "aspe:example.com:ABCDEF",
		Version:   &version,
		Name:      &name,
		Color:     &c,
		ClaimURIs: uris,
	}, "ABCDEF", outcomes)
}

var (
	verifiedDNS = core.Verified("dns:example.com", core.VerificationResult{
		ServiceProvider: &core.ServiceProviderInfo{ID: "dns", Name: "DNS"},
	})
	unverifiedGist = core.Unverified("https://gist.github.com/alice/abc")
)

func TestParseFormat(t *testing.T) {
	for _, name := range Formats() {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), f)
	}
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestProfile_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Profile(&buf, testProfile(verifiedDNS, unverifiedGist), FormatText))

	want := strings.Join([]string{
		"ASPE Profile: aspe:example.com:ABCDEF",
		"  Fingerprint: ABCDEF",
		"  Name: Alice",
		"  Version: 0",
		"  Color: #6855c3",
		"  Claims (1/2 verified):",
		"    ✔ dns:example.com (DNS)",
		"    ✖ https://gist.github.com/alice/abc",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestProfile_Text_NoClaims(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Profile(&buf, testProfile(), FormatText))
	assert.Contains(t, buf.String(), "  Claims: (none)\n")
	assert.NotContains(t, buf.String(), "✖")
}

func TestProfile_Text_AllUnverified(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Profile(&buf, testProfile(unverifiedGist), FormatText))
	assert.Contains(t, buf.String(), "Claims (0/1 verified)")
	assert.Contains(t, buf.String(), "✖ https://gist.github.com/alice/abc")
	assert.NotContains(t, buf.String(), "(none)")
}

func TestProfile_JSON(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatJSONPretty} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Profile(&buf, testProfile(verifiedDNS, unverifiedGist), f))

			var out map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
			assert.Equal(t, "aspe:example.com:ABCDEF", out["profile_uri"])
			assert.Equal(t, "Alice", out["name"])
			assert.Nil(t, out["description"])

			proofs, ok := out["verified_proofs"].([]any)
			require.True(t, ok)
			require.Len(t, proofs, 2)
			first := proofs[0].(map[string]any)
			assert.Equal(t, "dns:example.com", first["uri"])
			assert.NotNil(t, first["verification_result"])
			assert.Nil(t, proofs[1].(map[string]any)["verification_result"])
		})
	}
}

func TestProfile_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Profile(&buf, testProfile(verifiedDNS, unverifiedGist), FormatTable))
	out := buf.String()
	assert.Contains(t, out, "Alice (aspe:example.com:ABCDEF)")
	assert.Contains(t, out, "dns:example.com")
	assert.Contains(t, out, "DNS")
	assert.Less(t, strings.Index(out, "dns:example.com"), strings.Index(out, "gist.github.com"))
}

func TestKeyProfile_Text(t *testing.T) {
	p := &openpgp.KeyProfile{
		Fingerprint: "3637202523E7C1309AB79E99EF2DC5827B445F4B",
		ProofURI:    "openpgp4fpr:3637202523E7C1309AB79E99EF2DC5827B445F4B",
		UserIDProofs: []openpgp.UserIDOutcomes{
			{UserID: "Alice <alice@example.org>", Proofs: []core.ClaimOutcome{verifiedDNS, unverifiedGist}},
			{UserID: "Alice <alice@corp.example>"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, KeyProfile(&buf, p, FormatText))

	want := strings.Join([]string{
		"OpenPGP Key Fingerprint: 3637202523E7C1309AB79E99EF2DC5827B445F4B",
		"  UserID: Alice <alice@example.org>",
		"    ✔ dns:example.com (DNS)",
		"    ✖ https://gist.github.com/alice/abc",
		"  UserID: Alice <alice@corp.example>",
		"    (none)",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
		ok      bool
	}{
		{"#6855c3", 0x68, 0x55, 0xc3, true},
		{"6855C3", 0x68, 0x55, 0xc3, true},
		{"#fff", 255, 255, 255, true},
		{"#12345", 0, 0, 0, false},
		{"#zzzzzz", 0, 0, 0, false},
		{"", 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, g, b, ok := parseHexColor(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, []int{tt.r, tt.g, tt.b}, []int{r, g, b})
		})
	}
}
