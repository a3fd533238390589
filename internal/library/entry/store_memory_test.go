// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entry_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/taibuivan/animetrack/internal/library/entry"
	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

// memoryRepository is an in-memory [entry.Repository] with failure injection.
type memoryRepository struct {
	mu      sync.Mutex
	entries map[string]*entry.Entry

	// updateCalls counts UpdateFields invocations, including failed ones.
	updateCalls int
	// failFind, when set, is returned by FindByIDAndOwner.
	failFind error
	// failUpdate, when set, decides per call (1-based) whether UpdateFields fails.
	failUpdate func(call int, fields entry.Fields) error
}

func newMemoryRepository(seed ...*entry.Entry) *memoryRepository {
	repository := &memoryRepository{entries: make(map[string]*entry.Entry)}
	for _, e := range seed {
		repository.entries[e.ID] = clone(e)
	}
	return repository
}

func clone(e *entry.Entry) *entry.Entry {
	c := *e
	c.Genres = append([]string(nil), e.Genres...)
	if c.Genres == nil {
		c.Genres = []string{}
	}
	return &c
}

func (repository *memoryRepository) stored(id string) *entry.Entry {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return clone(repository.entries[id])
}

func (repository *memoryRepository) FindByIDAndOwner(_ context.Context, id, ownerID string) (*entry.Entry, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.failFind != nil {
		return nil, repository.failFind
	}

	e, ok := repository.entries[id]
	if !ok || e.OwnerID != ownerID {
		return nil, apperr.NotFound("Entry")
	}
	return clone(e), nil
}

func (repository *memoryRepository) Create(_ context.Context, e *entry.Entry) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, existing := range repository.entries {
		if existing.OwnerID == e.OwnerID && existing.TitleKey == e.TitleKey {
			return apperr.Conflict("Entry already exists")
		}
	}
	repository.entries[e.ID] = clone(e)
	return nil
}

func (repository *memoryRepository) UpdateFields(_ context.Context, id, ownerID string, fields entry.Fields) (*entry.Entry, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.updateCalls++
	if repository.failUpdate != nil {
		if err := repository.failUpdate(repository.updateCalls, fields); err != nil {
			return nil, err
		}
	}

	e, ok := repository.entries[id]
	if !ok || e.OwnerID != ownerID {
		return nil, apperr.NotFound("Entry")
	}

	if fields.TitleKey != nil {
		for otherID, other := range repository.entries {
			if otherID != id && other.OwnerID == ownerID && other.TitleKey == *fields.TitleKey {
				return nil, apperr.Conflict("Entry already exists")
			}
		}
		e.TitleKey = *fields.TitleKey
	}
	if fields.Title != nil {
		e.Title = *fields.Title
	}
	if fields.CoverImage != nil {
		e.CoverImage = *fields.CoverImage
	}
	if fields.Status != nil {
		e.Status = *fields.Status
	}
	if fields.CurrentEpisode != nil {
		e.CurrentEpisode = *fields.CurrentEpisode
	}
	if fields.ClearTotalEpisodes {
		e.TotalEpisodes = nil
	} else if fields.TotalEpisodes != nil {
		total := *fields.TotalEpisodes
		e.TotalEpisodes = &total
	}
	if fields.CurrentSeason != nil {
		e.CurrentSeason = *fields.CurrentSeason
	}
	if fields.TotalSeasons != nil {
		e.TotalSeasons = *fields.TotalSeasons
	}
	if fields.ClearRating {
		e.Rating = nil
	} else if fields.Rating != nil {
		rating := *fields.Rating
		e.Rating = &rating
	}
	if fields.Genres != nil {
		e.Genres = append([]string(nil), fields.Genres...)
	}
	if fields.Notes != nil {
		e.Notes = *fields.Notes
	}
	if fields.Favorite != nil {
		e.Favorite = *fields.Favorite
	}
	if fields.MalID != nil {
		malID := *fields.MalID
		e.MalID = &malID
	}
	if fields.StartDate != nil && e.StartDate == nil {
		startDate := *fields.StartDate
		e.StartDate = &startDate
	}
	if fields.EndDate != nil && e.EndDate == nil {
		endDate := *fields.EndDate
		e.EndDate = &endDate
	}

	return clone(e), nil
}

func (repository *memoryRepository) DeleteByIDAndOwner(_ context.Context, id, ownerID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	e, ok := repository.entries[id]
	if !ok || e.OwnerID != ownerID {
		return apperr.NotFound("Entry")
	}
	delete(repository.entries, id)
	return nil
}

func (repository *memoryRepository) owned(ownerID string) []*entry.Entry {
	var out []*entry.Entry
	for _, e := range repository.entries {
		if e.OwnerID == ownerID {
			out = append(out, clone(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (repository *memoryRepository) List(_ context.Context, ownerID string, filter entry.Filter, limit, offset int) ([]*entry.Entry, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var matched []*entry.Entry
	for _, e := range repository.owned(ownerID) {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, e.Status) {
			continue
		}
		if filter.Favorite != nil && e.Favorite != *filter.Favorite {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	if offset > total {
		offset = total
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func containsStatus(statuses []watchstatus.Status, status watchstatus.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (repository *memoryRepository) Search(_ context.Context, ownerID, query string, limit int) ([]*entry.Entry, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	out := make([]*entry.Entry, 0)
	for _, e := range repository.owned(ownerID) {
		if strings.Contains(strings.ToLower(e.Title), strings.ToLower(query)) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (repository *memoryRepository) Stats(_ context.Context, ownerID string) (*entry.Stats, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stats := &entry.Stats{}
	for _, e := range repository.owned(ownerID) {
		stats.Total++
		stats.TotalEpisodesWatched += e.CurrentEpisode
		if e.Favorite {
			stats.Favorites++
		}
		switch e.Status {
		case watchstatus.ToWatch:
			stats.ToWatch++
		case watchstatus.Watching:
			stats.Watching++
		case watchstatus.Completed:
			stats.Completed++
		case watchstatus.OnHold:
			stats.OnHold++
		case watchstatus.Dropped:
			stats.Dropped++
		}
	}
	return stats, nil
}
