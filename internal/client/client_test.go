// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animetrack/internal/client"
	"github.com/taibuivan/animetrack/internal/library/entry"
	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/respond"
	"github.com/taibuivan/animetrack/pkg/pagination"
	"github.com/taibuivan/animetrack/pkg/pointer"
	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

func fixture(episode int, status watchstatus.Status) *entry.Entry {
	return &entry.Entry{
		ID:             "entry-1",
		OwnerID:        "user-1",
		Title:          "Frieren",
		Status:         status,
		CurrentEpisode: episode,
		TotalEpisodes:  pointer.To(28),
		TotalSeasons:   1,
		Genres:         []string{},
	}
}

// newServer mounts handlers under the API prefix and returns a client bound
// to it.
func newServer(t *testing.T, mount func(router chi.Router)) *client.Client {
	t.Helper()

	router := chi.NewRouter()
	router.Route("/api/v1", mount)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return client.New(server.URL+"/", client.WithToken("token-1"), client.WithHTTPClient(server.Client()))
}

/*
TestApplyProgress checks the request the client sends and the entry it
decodes.
*/
func TestApplyProgress(t *testing.T) {
	api := newServer(t, func(router chi.Router) {
		router.Patch("/entries/{id}/progress", func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "Bearer token-1", request.Header.Get("Authorization"))
			assert.Equal(t, "entry-1", chi.URLParam(request, "id"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(request.Body).Decode(&body))
			assert.Equal(t, map[string]any{"current_episode": float64(5)}, body)

			respond.OK(writer, fixture(5, watchstatus.Watching))
		})
	})

	got, err := api.ApplyProgress(context.Background(), "entry-1", 5)

	require.NoError(t, err)
	assert.Equal(t, 5, got.CurrentEpisode)
	assert.Equal(t, watchstatus.Watching, got.Status)
}

/*
TestApplyProgress_StatusSyncFailed decodes the committed entry carried by the
error envelope.
*/
func TestApplyProgress_StatusSyncFailed(t *testing.T) {
	committed := fixture(28, watchstatus.Watching)

	api := newServer(t, func(router chi.Router) {
		router.Patch("/entries/{id}/progress", func(writer http.ResponseWriter, request *http.Request) {
			respond.Error(writer, request, apperr.StatusSyncFailed(committed, errors.New("store down")))
		})
	})

	_, err := api.ApplyProgress(context.Background(), "entry-1", 28)
	require.Error(t, err)

	got, ok := client.IsStatusSyncFailed(err)
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, 28, got.CurrentEpisode)
	assert.Equal(t, watchstatus.Watching, got.Status)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.False(t, client.IsNotFound(err))
}

func TestErrors(t *testing.T) {
	api := newServer(t, func(router chi.Router) {
		router.Get("/entries/{id}", func(writer http.ResponseWriter, request *http.Request) {
			respond.Error(writer, request, apperr.NotFound("Entry"))
		})
		router.Post("/entries", func(writer http.ResponseWriter, request *http.Request) {
			respond.Error(writer, request, apperr.ValidationError("Validation failed",
				apperr.FieldError{Field: "title", Message: "is required"}))
		})
		router.Delete("/entries/{id}", func(writer http.ResponseWriter, _ *http.Request) {
			http.Error(writer, "bad gateway", http.StatusBadGateway)
		})
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := api.GetEntry(context.Background(), "missing")
		assert.True(t, client.IsNotFound(err))

		_, ok := client.IsStatusSyncFailed(err)
		assert.False(t, ok)
	})

	t.Run("validation_details", func(t *testing.T) {
		_, err := api.CreateEntry(context.Background(), entry.Draft{})

		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apperr.CodeValidation, apiErr.Code)
		require.Len(t, apiErr.Details, 1)
		assert.Equal(t, "title", apiErr.Details[0].Field)
	})

	t.Run("non_envelope_body", func(t *testing.T) {
		err := api.DeleteEntry(context.Background(), "entry-1")

		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Empty(t, apiErr.Code)
		assert.Contains(t, apiErr.Error(), "502")
	})
}

/*
TestListEntries checks the filter query and the pagination block.
*/
func TestListEntries(t *testing.T) {
	api := newServer(t, func(router chi.Router) {
		router.Get("/entries", func(writer http.ResponseWriter, request *http.Request) {
			query := request.URL.Query()
			assert.Equal(t, "watching,on_hold", query.Get("status"))
			assert.Equal(t, "true", query.Get("favorite"))
			assert.Equal(t, "2", query.Get("page"))
			assert.Equal(t, "1", query.Get("limit"))

			respond.Paginated(writer, []*entry.Entry{fixture(3, watchstatus.Watching)}, pagination.NewMeta(pagination.Params{Page: 2, Limit: 1}, 2))
		})
	})

	entries, meta, err := api.ListEntries(context.Background(), client.ListOptions{
		Statuses: []watchstatus.Status{watchstatus.Watching, watchstatus.OnHold},
		Favorite: pointer.To(true),
		Page:     2,
		Limit:    1,
	})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Frieren", entries[0].Title)
	assert.Equal(t, 2, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestQuickActionAndDelete(t *testing.T) {
	var deleted bool

	api := newServer(t, func(router chi.Router) {
		router.Post("/entries/{id}/actions/{action}", func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "drop", chi.URLParam(request, "action"))
			respond.OK(writer, fixture(3, watchstatus.Dropped))
		})
		router.Delete("/entries/{id}", func(writer http.ResponseWriter, _ *http.Request) {
			deleted = true
			respond.NoContent(writer)
		})
	})

	got, err := api.QuickAction(context.Background(), "entry-1", entry.ActionDrop)
	require.NoError(t, err)
	assert.Equal(t, watchstatus.Dropped, got.Status)

	require.NoError(t, api.DeleteEntry(context.Background(), "entry-1"))
	assert.True(t, deleted)
}

func TestCatalogSearch(t *testing.T) {
	api := newServer(t, func(router chi.Router) {
		router.Get("/catalog/search", func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "frieren", request.URL.Query().Get("q"))
			respond.OK(writer, []map[string]any{{"mal_id": 52991, "title": "Sousou no Frieren", "total_episodes": 28}})
		})
	})

	results, err := api.CatalogSearch(context.Background(), "frieren")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 52991, results[0].MalID)
	require.NotNil(t, results[0].TotalEpisodes)
	assert.Equal(t, 28, *results[0].TotalEpisodes)
}
