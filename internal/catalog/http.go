// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/animetrack/internal/platform/request"
	"github.com/taibuivan/animetrack/internal/platform/respond"
	"github.com/taibuivan/animetrack/internal/platform/validate"
)

// Handler implements the HTTP layer for catalog lookups.
type Handler struct {
	service *Service
}

// NewHandler constructs a new catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the catalog endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/search", handler.search)
	router.Get("/anime/{malID}", handler.anime)
	return router
}

/*
GET /api/v1/catalog/search.

Request:
  - q: string

Response:
  - 200: []Prefill
  - 503: SERVICE_UNAVAILABLE
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	results, err := handler.service.Search(request.Context(), request.URL.Query().Get(fieldQuery))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, results)
}

// GET /api/v1/catalog/anime/{malID}.
func (handler *Handler) anime(writer http.ResponseWriter, request *http.Request) {
	malID, err := strconv.Atoi(requestutil.Param(request, fieldMalID))
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(fieldMalID, "Must be a positive integer"))
		return
	}

	prefill, err := handler.service.Anime(request.Context(), malID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, prefill)
}
