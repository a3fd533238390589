// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ctxutil stores and reads the per-request values shared by middleware
and handlers: the request id, the request logger and the authenticated user.

Authentication runs after the access log middleware has started, so the
user id is also written back into a [Trace] owned by that middleware. The
final "http_request_finished" line can then name the caller.
*/
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/animetrack/internal/platform/ctxkey"
	"github.com/taibuivan/animetrack/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the request ID, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// Trace collects values resolved while a request is being served.
type Trace struct {
	UserID string
}

// WithTrace attaches an empty [Trace] and returns it for reading once the
// request has finished.
func WithTrace(ctx context.Context) (context.Context, *Trace) {
	trace := &Trace{}
	return context.WithValue(ctx, ctxkey.KeyTrace, trace), trace
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Identity

// WithAuthUser attaches the verified claims. The request logger gains a
// user_id attribute and the [Trace], if any, records the user.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	ctx = context.WithValue(ctx, ctxkey.KeyUser, user)
	if user == nil {
		return ctx
	}

	if trace, ok := ctx.Value(ctxkey.KeyTrace).(*Trace); ok {
		trace.UserID = user.UserID
	}
	return WithLogger(ctx, GetLogger(ctx).With(slog.String("user_id", user.UserID)))
}

// GetAuthUser returns the verified claims, or nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetUserID returns the authenticated user id, or "" for anonymous requests.
func GetUserID(ctx context.Context) string {
	if claims := GetAuthUser(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}
