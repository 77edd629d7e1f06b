package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/rs/xid"
)

const CorrelationIDHeader = "X-Correlation-ID"

// validCorrelationID limits what a client may choose as correlation ID, since it ends up in logs.
var validCorrelationID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type correlationIDKey struct{}

// WithCorrelationID returns a copy of ctx carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationCtx retrieves the correlation ID from the context, or "" if there is none.
func CorrelationCtx(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// CorrelationIDMiddleware keeps a well-formed X-Correlation-ID of the request or generates a new one,
// and echoes it in the response.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if !validCorrelationID.MatchString(id) {
			id = xid.New().String()
		}
		w.Header().Set(CorrelationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), id)))
	})
}
