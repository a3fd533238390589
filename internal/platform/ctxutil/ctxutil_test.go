// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animetrack/internal/platform/ctxutil"
	"github.com/taibuivan/animetrack/internal/platform/sec"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", ctxutil.GetRequestID(ctx))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	logger := slog.New(slog.DiscardHandler)
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestAuthUser checks that authenticating a request names the user in the
trace and in every later log line.
*/
func TestAuthUser(t *testing.T) {
	var buffer bytes.Buffer
	ctx := ctxutil.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buffer, nil)))
	ctx, trace := ctxutil.WithTrace(ctx)

	assert.Nil(t, ctxutil.GetAuthUser(ctx))
	assert.Empty(t, ctxutil.GetUserID(ctx))

	ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "user-123", Username: "kaori"})

	claims := ctxutil.GetAuthUser(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "kaori", claims.Username)
	assert.Equal(t, "user-123", ctxutil.GetUserID(ctx))
	assert.Equal(t, "user-123", trace.UserID)

	ctxutil.GetLogger(ctx).Info("entry_created")
	assert.Contains(t, buffer.String(), "user_id=user-123")
}

func TestAuthUser_WithoutTrace(t *testing.T) {
	ctx := ctxutil.WithAuthUser(context.Background(), &sec.AuthClaims{UserID: "user-1"})
	assert.Equal(t, "user-1", ctxutil.GetUserID(ctx))

	ctx = ctxutil.WithAuthUser(context.Background(), nil)
	assert.Empty(t, ctxutil.GetUserID(ctx))
}
