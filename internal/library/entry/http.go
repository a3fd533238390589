// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entry

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	requestutil "github.com/taibuivan/animetrack/internal/platform/request"
	"github.com/taibuivan/animetrack/internal/platform/respond"
	"github.com/taibuivan/animetrack/internal/platform/validate"
	"github.com/taibuivan/animetrack/pkg/convert"
	"github.com/taibuivan/animetrack/pkg/pagination"
	"github.com/taibuivan/animetrack/pkg/query"
	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

// # Handler Implementation

// Handler implements the HTTP layer for the library.
// Every route requires an authenticated owner.
type Handler struct {
	service  *Service
	progress *ProgressService
}

// NewHandler constructs a new entry [Handler].
func NewHandler(service *Service, progress *ProgressService) *Handler {
	return &Handler{service: service, progress: progress}
}

// Routes returns a [chi.Router] configured with the library endpoints.
// It must be mounted behind RequireAuth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Library
	router.Post("/", handler.createEntry)
	router.Get("/", handler.listEntries)
	router.Get("/stats", handler.getStats)
	router.Get("/search", handler.searchEntries)

	// ## Single Entry
	router.Get("/{id}", handler.getEntry)
	router.Put("/{id}", handler.updateEntry)
	router.Delete("/{id}", handler.deleteEntry)

	// ## Progress
	router.Patch("/{id}/progress", handler.applyProgress)
	router.Post("/{id}/progress/sync", handler.syncStatus)

	// ## Quick Actions
	router.Post("/{id}/actions/{action}", handler.quickAction)

	return router
}

// # Library Endpoints

/*
POST /api/v1/entries.

Request:
  - body: Draft

Response:
  - 201: Entry
  - 400: VALIDATION_ERROR
  - 409: CONFLICT (title already tracked)
*/
func (handler *Handler) createEntry(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var draft Draft
	if err := requestutil.DecodeJSON(request, &draft); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.Create(request.Context(), ownerID, draft)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

/*
GET /api/v1/entries.

Request:
  - status: []string (repeatable or comma separated; wire values or labels)
  - favorite: bool
  - page, limit: int

Response:
  - 200: []Entry (paginated)
*/
func (handler *Handler) listEntries(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	queryParams := request.URL.Query()

	statuses, err := parseStatuses(queryParams[FieldStatus])
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{
		Statuses: statuses,
		Favorite: convert.ToOptionalBool(queryParams.Get("favorite")),
	}

	page := pagination.FromQuery(queryParams)
	entries, total, err := handler.service.List(request.Context(), ownerID, filter, page.Limit, page.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(page, total))
}

/*
GET /api/v1/entries/search.

Request:
  - q: string (required)
  - limit: int

Response:
  - 200: []Entry
  - 400: VALIDATION_ERROR (missing q)
*/
func (handler *Handler) searchEntries(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	limit := pagination.FromQuery(request.URL.Query()).Limit
	entries, err := handler.service.Search(request.Context(), ownerID, request.URL.Query().Get(FieldQuery), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

// GET /api/v1/entries/stats.
func (handler *Handler) getStats(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stats, err := handler.service.Stats(request.Context(), ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

// # Single Entry Endpoints

// GET /api/v1/entries/{id}.
func (handler *Handler) getEntry(writer http.ResponseWriter, request *http.Request) {
	ownerID, entryID, ok := handler.scope(writer, request)
	if !ok {
		return
	}

	entry, err := handler.service.Get(request.Context(), entryID, ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
PUT /api/v1/entries/{id}.

Request:
  - body: Patch (any subset of editable fields)

Response:
  - 200: Entry
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
*/
func (handler *Handler) updateEntry(writer http.ResponseWriter, request *http.Request) {
	ownerID, entryID, ok := handler.scope(writer, request)
	if !ok {
		return
	}

	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.service.Update(request.Context(), entryID, ownerID, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

// DELETE /api/v1/entries/{id}.
func (handler *Handler) deleteEntry(writer http.ResponseWriter, request *http.Request) {
	ownerID, entryID, ok := handler.scope(writer, request)
	if !ok {
		return
	}

	if err := handler.service.Delete(request.Context(), entryID, ownerID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Progress Endpoints

// progressRequest is the body of PATCH /entries/{id}/progress.
type progressRequest struct {
	CurrentEpisode *int `json:"current_episode"`
}

/*
PATCH /api/v1/entries/{id}/progress.

Request:
  - body: {"current_episode": int} (negative or over-range values are clamped)

Response:
  - 200: Entry
  - 400: VALIDATION_ERROR (missing, non-integer or beyond the INTEGER range)
  - 404: NOT_FOUND (missing or not owned)
  - 500: STATUS_SYNC_FAILED (meta.entry holds the committed progress)
  - 503: STORE_UNAVAILABLE
*/
func (handler *Handler) applyProgress(writer http.ResponseWriter, request *http.Request) {
	ownerID, entryID, ok := handler.scope(writer, request)
	if !ok {
		return
	}

	var body progressRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if body.CurrentEpisode == nil {
		respond.Error(writer, request, validate.RequiredError(FieldCurrentEpisode, "This field is required"))
		return
	}

	entry, err := handler.progress.ApplyProgress(request.Context(), entryID, ownerID, *body.CurrentEpisode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
POST /api/v1/entries/{id}/progress/sync.

Description: Retries the status write after STATUS_SYNC_FAILED.

Response:
  - 200: Entry
*/
func (handler *Handler) syncStatus(writer http.ResponseWriter, request *http.Request) {
	ownerID, entryID, ok := handler.scope(writer, request)
	if !ok {
		return
	}

	entry, err := handler.progress.SyncStatus(request.Context(), entryID, ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
POST /api/v1/entries/{id}/actions/{action}.

Request:
  - action: pause | drop | favorite | unfavorite

Response:
  - 200: Entry
*/
func (handler *Handler) quickAction(writer http.ResponseWriter, request *http.Request) {
	ownerID, entryID, ok := handler.scope(writer, request)
	if !ok {
		return
	}

	action := Action(requestutil.Param(request, FieldAction))
	entry, err := handler.service.QuickAction(request.Context(), entryID, ownerID, action)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

// # Helpers

// scope resolves the authenticated owner and the entry id, writing the error
// response itself when either is missing.
//
// A malformed id is answered with 404 so it looks like any other entry the
// caller cannot see.
func (handler *Handler) scope(writer http.ResponseWriter, request *http.Request) (ownerID, entryID string, ok bool) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return "", "", false
	}

	entryID, err = requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, apperr.NotFound(resourceEntry))
		return "", "", false
	}

	return ownerID, entryID, true
}

// parseStatuses accepts repeated and comma separated status values.
func parseStatuses(raw []string) ([]watchstatus.Status, error) {
	var statuses []watchstatus.Status
	for _, part := range query.List(raw) {
		status, err := watchstatus.Parse(part)
		if err != nil {
			return nil, validate.RequiredError(FieldStatus, "Must be one of: to_watch, watching, completed, on_hold, dropped")
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
