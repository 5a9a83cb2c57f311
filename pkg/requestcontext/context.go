// Package requestcontext stores per-request values (caller, request id and
// request clock) on a context.Context. Middleware writes them; services read
// them without depending on net/http.
package requestcontext

import (
	"context"
	"time"

	id "volunteerhub/pkg/domain"
)

type (
	actorKey     struct{}
	requestIDKey struct{}
	clockKey     struct{}
)

// Actor is the caller resolved by the auth middleware, or the zero Actor when
// the request is anonymous.
func Actor(ctx context.Context) id.Actor {
	actor, _ := ctx.Value(actorKey{}).(id.Actor)
	return actor
}

func WithActor(ctx context.Context, actor id.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(requestIDKey{}).(string)
	return reqID
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now is the instant the request was received. Contexts that never passed
// through the requesttime middleware get the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(clockKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins Now for everything downstream of ctx.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, clockKey{}, t)
}
