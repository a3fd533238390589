// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entry manages a user's tracked anime titles.

Every entry belongs to exactly one owner. All reads and writes are scoped by
(entry id, owner id), and an entry owned by someone else is reported exactly
like a missing one.

Core Responsibility:

  - Library: create, list, search, edit and delete tracked titles.
  - Progress: apply episode edits and keep the watch status consistent with
    them (see [ProgressService]).
  - Quick actions: pause, drop and favourite without touching progress.
*/
package entry

import (
	"time"

	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

// # Domain Entities

// Entry is a single tracked title in a user's library.
type Entry struct {
	ID             string             `json:"id"`
	OwnerID        string             `json:"owner_id"`
	Title          string             `json:"title"`
	TitleKey       string             `json:"-"`
	CoverImage     string             `json:"cover_image"`
	Status         watchstatus.Status `json:"status"`
	CurrentEpisode int                `json:"current_episode"`
	TotalEpisodes  *int               `json:"total_episodes"`
	CurrentSeason  int                `json:"current_season"`
	TotalSeasons   int                `json:"total_seasons"`
	Rating         *float64           `json:"rating"`
	Genres         []string           `json:"genres"`
	Notes          string             `json:"notes"`
	Favorite       bool               `json:"favorite"`
	StartDate      *time.Time         `json:"start_date"`
	EndDate        *time.Time         `json:"end_date"`
	MalID          *int               `json:"mal_id"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Fields is a partial update applied by [Repository.UpdateFields].
//
// A nil pointer leaves the column untouched. StartDate and EndDate are only
// written when the stored value is still NULL.
type Fields struct {
	Title              *string
	TitleKey           *string
	CoverImage         *string
	Status             *watchstatus.Status
	CurrentEpisode     *int
	TotalEpisodes      *int
	ClearTotalEpisodes bool
	CurrentSeason      *int
	TotalSeasons       *int
	Rating             *float64
	ClearRating        bool
	Genres             []string
	Notes              *string
	Favorite           *bool
	StartDate          *time.Time
	EndDate            *time.Time
	MalID              *int
}

// IsEmpty reports whether the update would change nothing.
func (f Fields) IsEmpty() bool {
	return f.Title == nil && f.TitleKey == nil && f.CoverImage == nil && f.Status == nil &&
		f.CurrentEpisode == nil && f.TotalEpisodes == nil && !f.ClearTotalEpisodes &&
		f.CurrentSeason == nil && f.TotalSeasons == nil && f.Rating == nil && !f.ClearRating &&
		f.Genres == nil && f.Notes == nil && f.Favorite == nil && f.StartDate == nil &&
		f.EndDate == nil && f.MalID == nil
}

// Patch is a client edit of an entry, as received on PUT /entries/{id}.
//
// Clear flags distinguish "set to null" from "not provided" for the nullable
// numeric fields.
type Patch struct {
	Title              *string             `json:"title"`
	CoverImage         *string             `json:"cover_image"`
	Status             *watchstatus.Status `json:"status"`
	CurrentEpisode     *int                `json:"current_episode"`
	TotalEpisodes      *int                `json:"total_episodes"`
	ClearTotalEpisodes bool                `json:"clear_total_episodes"`
	CurrentSeason      *int                `json:"current_season"`
	TotalSeasons       *int                `json:"total_seasons"`
	Rating             *float64            `json:"rating"`
	ClearRating        bool                `json:"clear_rating"`
	Genres             []string            `json:"genres"`
	Notes              *string             `json:"notes"`
	Favorite           *bool               `json:"favorite"`
}

// Filter narrows a library listing.
type Filter struct {
	Statuses []watchstatus.Status
	Favorite *bool
}

// Stats summarises a user's library.
type Stats struct {
	Total                int `json:"total"`
	ToWatch              int `json:"to_watch"`
	Watching             int `json:"watching"`
	Completed            int `json:"completed"`
	OnHold               int `json:"on_hold"`
	Dropped              int `json:"dropped"`
	Favorites            int `json:"favorites"`
	TotalEpisodesWatched int `json:"total_episodes_watched"`
}

// # Quick Actions

// Action is a one-tap change that bypasses the progress rule.
type Action string

const (
	ActionPause      Action = "pause"
	ActionDrop       Action = "drop"
	ActionFavorite   Action = "favorite"
	ActionUnfavorite Action = "unfavorite"
)

// Actions lists every supported quick action.
var Actions = []Action{ActionPause, ActionDrop, ActionFavorite, ActionUnfavorite}

// # Field Identifiers

const (
	FieldTitle          = "title"
	FieldCoverImage     = "cover_image"
	FieldStatus         = "status"
	FieldCurrentEpisode = "current_episode"
	FieldTotalEpisodes  = "total_episodes"
	FieldCurrentSeason  = "current_season"
	FieldTotalSeasons   = "total_seasons"
	FieldRating         = "rating"
	FieldGenres         = "genres"
	FieldNotes          = "notes"
	FieldQuery          = "q"
	FieldAction         = "action"
)
