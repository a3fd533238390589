// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animetrack/internal/catalog"
	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/metrics"
)

const jikanURL = "https://jikan.test/v4"

const frierenJSON = `{
	"mal_id": 52991,
	"title": "Sousou no Frieren",
	"title_english": "Frieren: Beyond Journey's End",
	"episodes": 28,
	"score": 9.3,
	"synopsis": "An elf mage outlives her party.",
	"images": {"jpg": {"image_url": "https://cdn.test/small.jpg", "large_image_url": "https://cdn.test/large.jpg"}},
	"genres": [{"name": "Adventure"}, {"name": "Drama"}]
}`

// memoryStore is an in-memory [catalog.RemoteStore].
type memoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string][]byte)}
}

func (store *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	value, ok := store.values[key]
	if !ok {
		return nil, catalog.ErrCacheMiss
	}
	return value, nil
}

func (store *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return store.err
	}
	store.values[key] = value
	return nil
}

func newMockedClient(t *testing.T) (*catalog.JikanClient, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	return catalog.NewJikanClient(jikanURL, &http.Client{Transport: transport}), transport
}

func TestJikanClient_Search(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponderWithQuery(http.MethodGet, jikanURL+"/anime",
		map[string]string{"q": "frieren", "limit": "10", "order_by": "popularity", "sort": "asc"},
		httpmock.NewStringResponder(http.StatusOK, `{"data": [`+frierenJSON+`]}`))

	results, err := client.Search(context.Background(), "frieren", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, 52991, got.MalID)
	assert.Equal(t, "Sousou no Frieren", got.Title)
	assert.Equal(t, "https://cdn.test/large.jpg", got.CoverImage)
	require.NotNil(t, got.TotalEpisodes)
	assert.Equal(t, 28, *got.TotalEpisodes)
	assert.Equal(t, 1, got.TotalSeasons)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 9.3, *got.Rating, 0.001)
	assert.Equal(t, []string{"Adventure", "Drama"}, got.Genres)
}

/*
TestJikanClient_Anime_Sparse maps an airing show with no episode count or
score and only a small image.
*/
func TestJikanClient_Anime_Sparse(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, jikanURL+"/anime/1",
		httpmock.NewStringResponder(http.StatusOK, `{"data": {
			"mal_id": 1, "title": "", "title_english": "Ongoing", "episodes": null, "score": null,
			"images": {"jpg": {"image_url": "https://cdn.test/small.jpg"}}
		}}`))

	got, err := client.Anime(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ongoing", got.Title)
	assert.Equal(t, "https://cdn.test/small.jpg", got.CoverImage)
	assert.Nil(t, got.TotalEpisodes)
	assert.Nil(t, got.Rating)
	assert.Equal(t, []string{}, got.Genres)
}

func TestJikanClient_Errors(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, jikanURL+"/anime/404",
		httpmock.NewStringResponder(http.StatusNotFound, `{"status": 404}`))
	transport.RegisterResponder(http.MethodGet, jikanURL+"/anime/500",
		httpmock.NewStringResponder(http.StatusInternalServerError, `upstream down`))
	transport.RegisterResponder(http.MethodGet, jikanURL+"/anime/7",
		httpmock.NewStringResponder(http.StatusOK, `not json`))

	_, err := client.Anime(context.Background(), 404)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = client.Anime(context.Background(), 500)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")

	_, err = client.Anime(context.Background(), 7)
	assert.Error(t, err)
}

/*
TestService_Caching serves repeated lookups from the cache layers without
calling Jikan again.
*/
func TestService_Caching(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, jikanURL+"/anime/52991",
		httpmock.NewStringResponder(http.StatusOK, `{"data": `+frierenJSON+`}`))

	registry := prometheus.NewRegistry()
	collectors, err := metrics.New(registry)
	require.NoError(t, err)

	remote := newMemoryStore()
	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	first := catalog.NewService(client, catalog.NewCache(remote, collectors, logger), logger)
	got, err := first.Anime(ctx, 52991)
	require.NoError(t, err)
	assert.Equal(t, "Sousou no Frieren", got.Title)

	_, err = first.Anime(ctx, 52991)
	require.NoError(t, err)
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET "+jikanURL+"/anime/52991"])
	assert.Contains(t, remote.values, "catalog:anime:52991")

	// A second instance with a cold local cache reads through Redis.
	second := catalog.NewService(client, catalog.NewCache(remote, collectors, logger), logger)
	got, err = second.Anime(ctx, 52991)
	require.NoError(t, err)
	assert.Equal(t, 52991, got.MalID)
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET "+jikanURL+"/anime/52991"])

	expected := `
# HELP animetrack_catalog_cache_lookups_total Catalog cache lookups by layer and result
# TYPE animetrack_catalog_cache_lookups_total counter
animetrack_catalog_cache_lookups_total{layer="local",result="hit"} 1
animetrack_catalog_cache_lookups_total{layer="local",result="miss"} 2
animetrack_catalog_cache_lookups_total{layer="redis",result="hit"} 1
animetrack_catalog_cache_lookups_total{layer="redis",result="miss"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "animetrack_catalog_cache_lookups_total"))
}

/*
TestService_Degraded keeps working on the upstream when Redis fails, and
reports a failing upstream as SERVICE_UNAVAILABLE.
*/
func TestService_Degraded(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, jikanURL+"/anime",
		httpmock.NewStringResponder(http.StatusOK, `{"data": []}`))
	transport.RegisterResponder(http.MethodGet, jikanURL+"/anime/9",
		httpmock.NewErrorResponder(errors.New("connection refused")))
	transport.RegisterResponder(http.MethodGet, jikanURL+"/anime/404",
		httpmock.NewStringResponder(http.StatusNotFound, `{}`))

	remote := newMemoryStore()
	remote.err = errors.New("redis down")
	logger := slog.New(slog.DiscardHandler)
	service := catalog.NewService(client, catalog.NewCache(remote, nil, logger), logger)
	ctx := context.Background()

	results, err := service.Search(ctx, "  Nothing   Matches ")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)

	_, err = service.Search(ctx, "   ")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.Anime(ctx, 9)
	assert.True(t, apperr.HasCode(err, apperr.CodeServiceUnavailable))

	_, err = service.Anime(ctx, 404)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = service.Anime(ctx, 0)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestHandler(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, jikanURL+"/anime/52991",
		httpmock.NewStringResponder(http.StatusOK, `{"data": `+frierenJSON+`}`))
	transport.RegisterResponder(http.MethodGet, jikanURL+"/anime",
		httpmock.NewErrorResponder(errors.New("timeout")))

	logger := slog.New(slog.DiscardHandler)
	service := catalog.NewService(client, catalog.NewCache(nil, nil, logger), logger)

	router := chi.NewRouter()
	router.Mount("/catalog", catalog.NewHandler(service).Routes())

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"anime", "/catalog/anime/52991", http.StatusOK},
		{"anime_bad_id", "/catalog/anime/abc", http.StatusBadRequest},
		{"search_upstream_down", "/catalog/search?q=frieren", http.StatusServiceUnavailable},
		{"search_blank", "/catalog/search", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, recorder.Code)
		})
	}
}
