// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animetrack/internal/api"
	"github.com/taibuivan/animetrack/internal/catalog"
	"github.com/taibuivan/animetrack/internal/library/entry"
	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/config"
	"github.com/taibuivan/animetrack/internal/platform/metrics"
	"github.com/taibuivan/animetrack/internal/platform/sec"
	"github.com/taibuivan/animetrack/internal/users/account"
)

type rejectingVerifier struct{}

func (rejectingVerifier) VerifyToken(string) (*sec.AuthClaims, error) {
	return nil, errors.New("invalid")
}

// newServer builds the full router. Stores are never reached: every request
// in these tests stops at routing, authentication or the probes.
func newServer(t *testing.T, checks ...api.Check) http.Handler {
	t.Helper()

	context, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.DiscardHandler)
	collectors, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	liveness, readiness := api.NewHealthHandlers(logger, checks...)
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Entries:   entry.NewHandler(entry.NewService(nil, logger), entry.NewProgressService(nil, logger, collectors)),
		Accounts:  account.NewHandler(account.NewService(nil, nil, logger)),
		Catalog:   catalog.NewHandler(catalog.NewService(nil, nil, logger)),
	}

	cfg := &config.Config{ServerPort: "0", Environment: "test", FrontendURL: "http://localhost:3000"}
	return api.NewServer(context, cfg, logger, rejectingVerifier{}, collectors, handlers).Handler()
}

func get(t *testing.T, handler http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		request.Header.Set(header[i], header[i+1])
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestHealth(t *testing.T) {
	recorder := get(t, newServer(t), "/health")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"app":"animetrack-api"`)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

/*
TestReady reports each probe and fails as a whole when one of them fails.
*/
func TestReady(t *testing.T) {
	healthy := api.Check{Name: "postgres", Probe: func(context.Context) error { return nil }}
	broken := api.Check{Name: "redis", Probe: func(context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name       string
		checks     []api.Check
		wantStatus int
		wantState  string
	}{
		{"all_healthy", []api.Check{healthy}, http.StatusOK, "ready"},
		{"one_broken", []api.Check{healthy, broken}, http.StatusServiceUnavailable, "degraded"},
		{"no_checks", nil, http.StatusOK, "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := get(t, newServer(t, tt.checks...), "/ready")
			require.Equal(t, tt.wantStatus, recorder.Code)

			var body struct {
				Data struct {
					Status string `json:"status"`
					Checks []struct {
						Name  string `json:"name"`
						IsOK  bool   `json:"ok"`
						Error string `json:"error"`
					} `json:"checks"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Data.Status)
			assert.Len(t, body.Data.Checks, len(tt.checks))
		})
	}
}

/*
TestRouting checks the mounts and the middleware chain without touching any store.
*/
func TestRouting(t *testing.T) {
	server := newServer(t)

	tests := []struct {
		name       string
		path       string
		header     []string
		wantStatus int
		wantCode   string
	}{
		{"entries_require_auth", "/api/v1/entries", nil, http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"profile_requires_auth", "/api/v1/users/me", nil, http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"bad_token", "/api/v1/entries", []string{"Authorization", "Bearer nope"}, http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"malformed_scheme", "/api/v1/entries", []string{"Authorization", "Basic abc"}, http.StatusUnauthorized, apperr.CodeUnauthorized},
		{"themes_are_public", "/api/v1/themes", nil, http.StatusOK, ""},
		{"billing_disabled", "/api/v1/billing/status/cs_1", nil, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := get(t, server, tt.path, tt.header...)
			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantCode != "" {
				assert.Contains(t, recorder.Body.String(), `"code":"`+tt.wantCode+`"`)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newServer(t)
	get(t, server, "/health")

	recorder := get(t, server, "/metrics")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, strings.Contains(recorder.Body.String(), `animetrack_http_requests_total{method="GET",route="/health",status_code="200"} 1`))
}

func TestCORS_Preflight(t *testing.T) {
	server := newServer(t)

	request := httptest.NewRequest(http.MethodOptions, "/api/v1/entries", nil)
	request.Header.Set("Origin", "http://localhost:3000")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "http://localhost:3000", recorder.Header().Get("Access-Control-Allow-Origin"))
}
