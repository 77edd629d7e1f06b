package aspe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantDomain string
		wantLocal  string
		wantErr    bool
	}{
		{
			name:       "canonical",
			in:         "aspe:keyoxide.org:TOICV3SYXNJP7E4P5AOK5DHW44",
			wantDomain: "keyoxide.org",
			wantLocal:  "TOICV3SYXNJP7E4P5AOK5DHW44",
		},
		{
			name:       "mixed case is normalized",
			in:         "ASPE:KeyOxide.Org:toicv3syxnjp7e4p5aok5dhw44",
			wantDomain: "keyoxide.org",
			wantLocal:  "TOICV3SYXNJP7E4P5AOK5DHW44",
		},
		{
			name:       "domain with port",
			in:         "aspe:localhost:8443:ABCDEF",
			wantDomain: "localhost:8443",
			wantLocal:  "ABCDEF",
		},
		{
			name:       "surrounding whitespace",
			in:         "  aspe:example.com:ABC234 \n",
			wantDomain: "example.com",
			wantLocal:  "ABC234",
		},
		{name: "wrong scheme", in: "openpgp4fpr:ABCDEF", wantErr: true},
		{name: "missing local part", in: "aspe:example.com", wantErr: true},
		{name: "empty local part", in: "aspe:example.com:", wantErr: true},
		{name: "local part not base32", in: "aspe:example.com:ABC-01", wantErr: true},
		{name: "empty domain", in: "aspe::ABCDEF", wantErr: true},
		{name: "domain with path", in: "aspe:example.com/x:ABCDEF", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseURI(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrCodeMalformedURI, CodeOf(err))
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDomain, u.Domain)
			assert.Equal(t, tt.wantLocal, u.Local)
		})
	}
}

func TestURI_ProfileURL(t *testing.T) {
	u, err := ParseURI("aspe:keyoxide.org:TOICV3SYXNJP7E4P5AOK5DHW44")
	require.NoError(t, err)
	assert.Equal(t, "aspe:keyoxide.org:TOICV3SYXNJP7E4P5AOK5DHW44", u.String())
	assert.Equal(t, "https://keyoxide.org/.well-known/aspe/id/TOICV3SYXNJP7E4P5AOK5DHW44", u.ProfileURL())
}
