package claims

import (
	"context"
	"fmt"

	"github.com/darmiel/doipv/internal/core"
	"github.com/darmiel/doipv/internal/logging"
)

// truncatedSubjectLen is how much of the subject URI is shown in claim warnings.
const truncatedSubjectLen = 30

// Orchestrator verifies all claims of a profile concurrently.
// A failing claim is logged as a warning and reported as unverified; it never fails the batch.
type Orchestrator struct {
	checker core.ClaimChecker
	logger  logging.InternalLogger
	limit   int
}

type Option func(*Orchestrator)

// WithLogger sets where claim warnings go. Pass logging.Nop{} to silence them.
func WithLogger(logger logging.InternalLogger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithConcurrency limits how many claims are verified at the same time.
func WithConcurrency(limit int) Option {
	return func(o *Orchestrator) {
		o.limit = limit
	}
}

func NewOrchestrator(checker core.ClaimChecker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		checker: checker,
		logger:  logging.Nop{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// VerifyAll returns exactly one outcome per claim URI, in the order of claimURIs.
// The only error it returns is the cancellation of ctx, in which case no outcomes are returned.
func (o *Orchestrator) VerifyAll(ctx context.Context, subjectURI string, claimURIs []string) ([]core.ClaimOutcome, error) {
	return Collect(ctx, o.limit, claimURIs, func(ctx context.Context, claimURI string) core.ClaimOutcome {
		return o.verifyOne(ctx, claimURI, subjectURI)
	})
}

func (o *Orchestrator) verifyOne(ctx context.Context, claimURI, subjectURI string) (outcome core.ClaimOutcome) {
	defer func() {
		if r := recover(); r != nil {
			o.warn(claimURI, subjectURI, fmt.Errorf("panic: %v", r))
			outcome = core.Unverified(claimURI)
		}
	}()

	matches, err := o.checker.FindMatches(claimURI)
	if err != nil {
		o.warn(claimURI, subjectURI, err)
		return core.Unverified(claimURI)
	}

	result, err := o.checker.Verify(ctx, claimURI, subjectURI, matches)
	if err != nil {
		o.warn(claimURI, subjectURI, err)
		return core.Unverified(claimURI)
	}
	if result == nil {
		return core.Unverified(claimURI)
	}
	return core.Verified(claimURI, *result)
}

func (o *Orchestrator) warn(claimURI, subjectURI string, err error) {
	o.logger.Warn("%s", ProofError{
		ClaimURI:            claimURI,
		TruncatedSubjectURI: truncate(subjectURI, truncatedSubjectLen),
		Err:                 err,
	}.Error())
}

// ProofError describes why a single claim could not be verified.
type ProofError struct {
	ClaimURI            string
	TruncatedSubjectURI string
	Err                 error
}

func (e ProofError) Error() string {
	return fmt.Sprintf("failed to verify %q for %q: %v", e.TruncatedSubjectURI, e.ClaimURI, e.Err)
}

func (e ProofError) Unwrap() error {
	return e.Err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
