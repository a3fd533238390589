// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/constants"
	"github.com/taibuivan/animetrack/internal/platform/validate"
)

const (
	fieldQuery = "q"
	fieldMalID = "malID"

	unavailableMessage = "Anime catalog is unavailable, enter the details manually"
)

// # Service Layer

// Service answers catalog lookups from the cache or the upstream source.
type Service struct {
	source Source
	cache  *Cache
	logger *slog.Logger
}

// NewService constructs a new catalog [Service].
func NewService(source Source, cache *Cache, logger *slog.Logger) *Service {
	return &Service{source: source, cache: cache, logger: logger}
}

/*
Search finds anime by title.

Returns:
  - []Prefill: At most CatalogSearchLimit results
  - error: VALIDATION_ERROR (blank query) or SERVICE_UNAVAILABLE
*/
func (service *Service) Search(context context.Context, query string) ([]Prefill, error) {
	normalised := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if normalised == "" {
		return nil, validate.RequiredError(fieldQuery, "Search term required")
	}

	key := constants.RedisPrefixCatalogSearch + normalised

	var results []Prefill
	if service.cache.Load(context, key, &results) {
		return results, nil
	}

	results, err := service.source.Search(context, normalised, constants.CatalogSearchLimit)
	if err != nil {
		service.logger.WarnContext(context, "catalog_search_failed", slog.String("query", normalised), slog.Any("error", err))
		return nil, apperr.ServiceUnavailable(unavailableMessage, err)
	}
	if results == nil {
		results = []Prefill{}
	}

	service.cache.Store(context, key, results)
	return results, nil
}

/*
Anime fetches one anime by MyAnimeList id.

Returns:
  - error: VALIDATION_ERROR, NOT_FOUND or SERVICE_UNAVAILABLE
*/
func (service *Service) Anime(context context.Context, malID int) (*Prefill, error) {
	if malID <= 0 {
		return nil, validate.RequiredError(fieldMalID, "Must be a positive integer")
	}

	key := constants.RedisPrefixCatalogAnime + strconv.Itoa(malID)

	var cached Prefill
	if service.cache.Load(context, key, &cached) {
		return &cached, nil
	}

	prefill, err := service.source.Anime(context, malID)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, apperr.NotFound("Anime")
	case err != nil:
		service.logger.WarnContext(context, "catalog_anime_failed", slog.Int("mal_id", malID), slog.Any("error", err))
		return nil, apperr.ServiceUnavailable(unavailableMessage, err)
	}

	service.cache.Store(context, key, prefill)
	return prefill, nil
}
