// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animetrack/internal/platform/metrics"
)

func TestMetrics_Handler(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveHTTP(http.MethodPatch, "/api/v1/entries/{id}/progress", 200, 15*time.Millisecond)
	m.ProgressOutcome(metrics.OutcomeApplied)
	m.StatusTransition("to_watch", "watching")
	m.CacheLookup(metrics.LayerLocal, metrics.ResultHit)

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := recorder.Body.String()
	assert.Contains(t, body, `animetrack_progress_updates_total{outcome="applied"} 1`)
	assert.Contains(t, body, `animetrack_status_transitions_total{from="to_watch",to="watching"} 1`)
	assert.Contains(t, body, `animetrack_catalog_cache_lookups_total{layer="local",result="hit"} 1`)
	assert.Contains(t, body, `route="/api/v1/entries/{id}/progress"`)
}

func TestMetrics_DoubleRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := metrics.New(registry)
	require.NoError(t, err)

	_, err = metrics.New(registry)
	assert.Error(t, err)
}

/*
TestMetrics_Nil checks that a nil collector set is a no-op.
*/
func TestMetrics_Nil(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ProgressOutcome(metrics.OutcomeNoop)
		m.StatusTransition("a", "b")
		m.CacheLookup(metrics.LayerRedis, metrics.ResultMiss)
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
}
