// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics provides the Prometheus collectors exported on /metrics.
//
// # Architecture
//
// A single [Metrics] value is created at startup and passed to the components
// that record into it (HTTP middleware, progress service, catalog cache). A
// nil *Metrics is valid and records nothing, so tests can omit it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Progress outcomes recorded by [Metrics.ProgressOutcome].
const (
	OutcomeApplied          = "applied"
	OutcomeNoop             = "noop"
	OutcomeNotFound         = "not_found"
	OutcomeStoreUnavailable = "store_unavailable"
	OutcomeStatusSyncFailed = "status_sync_failed"
)

// Cache layers and results recorded by [Metrics.CacheLookup].
const (
	LayerLocal  = "local"
	LayerRedis  = "redis"
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Metrics holds every collector the API exposes.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	progressOutcomes  *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec

	cacheLookups *prometheus.CounterVec
}

// New creates and registers all collectors on registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animetrack_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animetrack_http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.progressOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animetrack_progress_updates_total",
			Help: "Progress edits by outcome",
		},
		[]string{"outcome"},
	)

	m.statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animetrack_status_transitions_total",
			Help: "Watch status changes persisted by the server",
		},
		[]string{"from", "to"},
	)

	m.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animetrack_catalog_cache_lookups_total",
			Help: "Catalog cache lookups by layer and result",
		},
		[]string{"layer", "result"},
	)

	for _, collector := range []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.progressOutcomes,
		m.statusTransitions,
		m.cacheLookups,
	} {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, statusCode int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ProgressOutcome counts one progress edit.
func (m *Metrics) ProgressOutcome(outcome string) {
	if m == nil {
		return
	}
	m.progressOutcomes.WithLabelValues(outcome).Inc()
}

// StatusTransition counts one persisted status change.
func (m *Metrics) StatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// CacheLookup counts one catalog cache access.
func (m *Metrics) CacheLookup(layer, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(layer, result).Inc()
}
