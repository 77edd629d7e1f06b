package aspe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serverURI returns the profile URI of local on a test server.
func serverURI(t *testing.T, srv *httptest.Server, local string) URI {
	t.Helper()
	u, err := ParseURI("aspe:" + strings.TrimPrefix(srv.URL, "https://") + ":" + local)
	require.NoError(t, err)
	return u
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotPath, gotContentType, gotUserAgent string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case WellKnownIDPath + "ABCDEF":
			_, _ = w.Write([]byte("a.b.c\n"))
		case WellKnownIDPath + "EMPTY":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	t.Run("untrusted certificate is rejected by default", func(t *testing.T) {
		f := NewHTTPFetcher(FetchOptions{})
		_, err := f.Fetch(ctx, serverURI(t, srv, "ABCDEF"))
		assert.Equal(t, ErrCodeFetchFailed, CodeOf(err))
		assert.ErrorIs(t, err, ErrTransport)
	})

	insecure := NewHTTPFetcher(FetchOptions{SkipVerifySSL: true, UserAgent: "doipv-test"})

	t.Run("token", func(t *testing.T) {
		token, err := insecure.Fetch(ctx, serverURI(t, srv, "ABCDEF"))
		require.NoError(t, err)
		assert.Equal(t, "a.b.c", token)
		assert.Equal(t, "/.well-known/aspe/id/ABCDEF", gotPath)
		assert.Equal(t, JWSMediaType, gotContentType)
		assert.Equal(t, "doipv-test", gotUserAgent)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := insecure.Fetch(ctx, serverURI(t, srv, "MISSING"))
		assert.Equal(t, ErrCodeFetchFailed, CodeOf(err))
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := insecure.Fetch(ctx, serverURI(t, srv, "EMPTY"))
		assert.Equal(t, ErrCodeMalformedToken, CodeOf(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := insecure.Fetch(cctx, serverURI(t, srv, "ABCDEF"))
		assert.Equal(t, ErrCodeFetchFailed, CodeOf(err))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
