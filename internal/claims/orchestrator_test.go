package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/doipv/internal/core"
)

// fakeChecker decides the outcome of a claim from its URI:
//
//	ok:...      verified
//	fail:...    Verify returns an error
//	nomatch:... FindMatches returns an error
//	nil:...     Verify returns no result and no error
//	panic:...   Verify panics
//
// A "slow" anywhere in the URI delays Verify.
type fakeChecker struct {
	mu      sync.Mutex
	seen    []string
	subject string
}

func (f *fakeChecker) FindMatches(claimURI string) ([]core.ClaimMatch, error) {
	if strings.HasPrefix(claimURI, "nomatch:") {
		return nil, errors.New("no provider")
	}
	return []core.ClaimMatch{{Provider: core.ServiceProviderInfo{ID: "fake", Name: "Fake"}}}, nil
}

func (f *fakeChecker) Verify(_ context.Context, claimURI, subjectURI string, matches []core.ClaimMatch) (*core.VerificationResult, error) {
	f.mu.Lock()
	f.seen = append(f.seen, claimURI)
	f.subject = subjectURI
	f.mu.Unlock()

	if strings.Contains(claimURI, "slow") {
		time.Sleep(20 * time.Millisecond)
	}
	switch {
	case strings.HasPrefix(claimURI, "ok:"):
		info := matches[0].Provider
		return &core.VerificationResult{ServiceProvider: &info}, nil
	case strings.HasPrefix(claimURI, "fail:"):
		return nil, fmt.Errorf("proof for %s not found", claimURI)
	case strings.HasPrefix(claimURI, "panic:"):
		panic("boom")
	default:
		return nil, nil
	}
}

type warnLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *warnLogger) Debug(string, ...any) {}
func (l *warnLogger) Info(string, ...any)  {}
func (l *warnLogger) Error(string, ...any) {}
func (l *warnLogger) Warn(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

const subject = "aspe:keyoxide.org:TOICV3SYXNJP7E4P5AOK5DHW44"

func TestOrchestrator_VerifyAll(t *testing.T) {
	checker := &fakeChecker{}
	logger := &warnLogger{}
	o := NewOrchestrator(checker, WithLogger(logger))

	claimURIs := []string{
		"ok:slow:first",
		"fail:second",
		"nomatch:third",
		"ok:fourth",
		"panic:fifth",
		"nil:sixth",
	}
	outcomes, err := o.VerifyAll(context.Background(), subject, claimURIs)
	require.NoError(t, err)
	require.Len(t, outcomes, len(claimURIs))

	for i, uri := range claimURIs {
		assert.Equal(t, uri, outcomes[i].URI)
	}
	assert.True(t, outcomes[0].Verified())
	assert.Equal(t, "fake", outcomes[0].Result.ServiceProvider.ID)
	assert.False(t, outcomes[1].Verified())
	assert.False(t, outcomes[2].Verified())
	assert.True(t, outcomes[3].Verified())
	assert.False(t, outcomes[4].Verified())
	assert.False(t, outcomes[5].Verified())

	assert.Equal(t, subject, checker.subject)
	// nomatch never reaches Verify
	assert.Len(t, checker.seen, 5)

	// one warning each for fail, nomatch and panic
	require.Len(t, logger.warns, 3)
	for _, w := range logger.warns {
		assert.Contains(t, w, "failed to verify")
		assert.Contains(t, w, `"aspe:keyoxide.org:TOICV3SYXNJP"`)
		assert.NotContains(t, w, subject)
	}
}

func TestOrchestrator_DuplicateClaims(t *testing.T) {
	o := NewOrchestrator(&fakeChecker{})
	outcomes, err := o.VerifyAll(context.Background(), subject, []string{"ok:a", "ok:a"})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Verified())
	assert.True(t, outcomes[1].Verified())
}

func TestOrchestrator_NoClaims(t *testing.T) {
	checker := &fakeChecker{}
	outcomes, err := NewOrchestrator(checker).VerifyAll(context.Background(), subject, nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Empty(t, checker.seen)
}

func TestOrchestrator_Concurrency(t *testing.T) {
	claimURIs := make([]string, 10)
	for i := range claimURIs {
		claimURIs[i] = fmt.Sprintf("ok:slow:%d", i)
	}

	start := time.Now()
	outcomes, err := NewOrchestrator(&fakeChecker{}).VerifyAll(context.Background(), subject, claimURIs)
	require.NoError(t, err)
	assert.Len(t, outcomes, 10)
	// 10 sequential checks would take at least 200ms
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestOrchestrator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcomes, err := NewOrchestrator(&fakeChecker{}).VerifyAll(ctx, subject, []string{"ok:a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, outcomes)
}

func TestProofError(t *testing.T) {
	cause := errors.New("timeout")
	err := ProofError{ClaimURI: "dns:example.com", TruncatedSubjectURI: "aspe:x", Err: cause}
	assert.Equal(t, `failed to verify "aspe:x" for "dns:example.com": timeout`, err.Error())
	assert.ErrorIs(t, err, cause)
}
