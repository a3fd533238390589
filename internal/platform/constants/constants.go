// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer and token lifetime.
  - Catalog and Billing: cache lifetimes and product pricing.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "animetrack-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "animetrack.app"

	// AccessTokenTTL is the lifetime of a token issued by account setup.
	// Devices re-run setup to refresh it.
	AccessTokenTTL = 30 * 24 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderStripeSig     = "Stripe-Signature"
)

// # JSON Field Identifiers

const (
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaUsers   = "users"
	SchemaTracker = "tracker"
	SchemaBilling = "billing"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixCatalogSearch = "catalog:search:"
	RedisPrefixCatalogAnime  = "catalog:anime:"
	RedisPrefixBillingEvent  = "billing:event:"
)

// # Catalog

const (
	// CatalogRemoteTTL is how long a Jikan response stays in Redis.
	CatalogRemoteTTL = 6 * time.Hour

	// CatalogLocalTTL is how long a response stays in the in-process cache.
	CatalogLocalTTL = 10 * time.Minute

	// CatalogRateLimitRPS matches the public Jikan limit of 3 requests per second.
	CatalogRateLimitRPS   = 3.0
	CatalogRateLimitBurst = 3

	// CatalogSearchLimit caps the number of search hits returned.
	CatalogSearchLimit = 10
)

// # Billing

const (
	// PremiumThemesPriceCents is the one-off price of the premium theme pack.
	PremiumThemesPriceCents = 499
	PremiumThemesCurrency   = "eur"
	ProductPremiumThemes    = "premium_themes"

	// WebhookTolerance bounds the age of a signed webhook payload.
	WebhookTolerance = 5 * time.Minute

	// WebhookEventTTL is how long a processed event id is remembered.
	WebhookEventTTL = 24 * time.Hour
)

// # Progress

const (
	// ProgressConfirmTimeout is how long a client waits for a progress
	// confirmation before rolling back.
	ProgressConfirmTimeout = 10 * time.Second
)
