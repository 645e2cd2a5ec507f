// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services and ledgers read them without
// importing net/http. Tests inject a fixed time with WithTime so
// timestamp-sensitive logic stays deterministic.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	companyIDKey   struct{}
)

// WithRequestID stores the correlation ID for the current request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID, or "" when none was set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithTime pins the observed time for the request. Intended for tests and
// middleware that want one consistent timestamp per request.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithCompanyID stores the authenticated company for the current request.
func WithCompanyID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, companyIDKey{}, id)
}

// CompanyID returns the authenticated company, or "" when none was set.
func CompanyID(ctx context.Context) string {
	id, _ := ctx.Value(companyIDKey{}).(string)
	return id
}
