// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog looks up anime metadata on Jikan (the MyAnimeList mirror) to
prefill the add-entry form.

Lookups are optional: a failing catalog never blocks entry creation, and the
clients fall back to manual entry on any error.

# Architecture

  - Source: [JikanClient], rate limited to the public API quota.
  - Cache: an in-process layer in front of Redis (see [Cache]).
  - Service: maps upstream failures to SERVICE_UNAVAILABLE.
*/
package catalog

import "context"

// Prefill is the subset of catalog data copied into a new entry.
type Prefill struct {
	MalID         int      `json:"mal_id"`
	Title         string   `json:"title"`
	CoverImage    string   `json:"cover_image"`
	TotalEpisodes *int     `json:"total_episodes"`
	TotalSeasons  int      `json:"total_seasons"`
	Rating        *float64 `json:"rating"`
	Genres        []string `json:"genres"`
	Synopsis      string   `json:"synopsis"`
}

// Source fetches catalog data from an upstream provider.
type Source interface {
	Search(context context.Context, query string, limit int) ([]Prefill, error)
	Anime(context context.Context, malID int) (*Prefill, error)
}
