// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entry

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/validate"
	"github.com/taibuivan/animetrack/pkg/pointer"
	"github.com/taibuivan/animetrack/pkg/slug"
	"github.com/taibuivan/animetrack/pkg/uuid"
	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

// Validation limits.
const (
	maxTitleLength = 300
	maxNotesLength = 5000
	maxGenres      = 20
	maxGenreLength = 50
	minRating      = 0
	maxRating      = 10

	// maxCount bounds episode and season numbers to the INTEGER columns.
	maxCount = math.MaxInt32
)

// # Service Layer

// Service orchestrates library management for a single owner at a time.
type Service struct {
	repository Repository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service] with its required repository.
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for start and end dates.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// Draft holds the attributes of a new entry.
type Draft struct {
	Title          string              `json:"title"`
	CoverImage     string              `json:"cover_image"`
	Status         *watchstatus.Status `json:"status"`
	CurrentEpisode int                 `json:"current_episode"`
	TotalEpisodes  *int                `json:"total_episodes"`
	CurrentSeason  int                 `json:"current_season"`
	TotalSeasons   int                 `json:"total_seasons"`
	Rating         *float64            `json:"rating"`
	Genres         []string            `json:"genres"`
	Notes          string              `json:"notes"`
	Favorite       bool                `json:"favorite"`
	MalID          *int                `json:"mal_id"`
}

// # Library Management

/*
Create adds a title to the owner's library.

Description: Validates the draft, normalises the title into its per-owner
unique key, clamps the starting episode and derives the initial status unless
one was given explicitly.

Parameters:
  - context: context.Context
  - ownerID: string (authenticated user)
  - draft: Draft

Returns:
  - *Entry: The persisted entry
  - error: VALIDATION_ERROR, CONFLICT (title already tracked) or STORE_UNAVAILABLE
*/
func (service *Service) Create(context context.Context, ownerID string, draft Draft) (*Entry, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.CurrentSeason == 0 {
		draft.CurrentSeason = 1
	}
	if draft.TotalSeasons == 0 {
		draft.TotalSeasons = 1
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, draft.Title).MaxLen(FieldTitle, draft.Title, maxTitleLength)
	validator.HTTPURL(FieldCoverImage, draft.CoverImage)
	validator.Max(FieldCurrentEpisode, draft.CurrentEpisode, maxCount)
	validator.Range(FieldCurrentSeason, draft.CurrentSeason, 1, maxCount)
	validator.Range(FieldTotalSeasons, draft.TotalSeasons, 1, maxCount)
	validator.MaxLen(FieldNotes, draft.Notes, maxNotesLength)
	validateTotal(validator, draft.TotalEpisodes)
	validateRating(validator, draft.Rating)
	validateGenres(validator, draft.Genres)
	if draft.Status != nil {
		validateStatus(validator, *draft.Status)
	}

	titleKey := slug.From(draft.Title)
	validator.Custom(FieldTitle, draft.Title != "" && titleKey == "", "Must contain at least one letter or digit")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	currentTime := service.now()
	episode := watchstatus.Clamp(draft.CurrentEpisode, draft.TotalEpisodes)

	status := watchstatus.Derive(watchstatus.ToWatch, episode, draft.TotalEpisodes)
	if draft.Status != nil {
		status = *draft.Status
	}

	entry := &Entry{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Title:          draft.Title,
		TitleKey:       titleKey,
		CoverImage:     draft.CoverImage,
		Status:         status,
		CurrentEpisode: episode,
		TotalEpisodes:  draft.TotalEpisodes,
		CurrentSeason:  draft.CurrentSeason,
		TotalSeasons:   draft.TotalSeasons,
		Rating:         draft.Rating,
		Genres:         normaliseGenres(draft.Genres),
		Notes:          draft.Notes,
		Favorite:       draft.Favorite,
		MalID:          draft.MalID,
		CreatedAt:      currentTime,
		UpdatedAt:      currentTime,
	}

	if episode > 0 {
		entry.StartDate = &currentTime
	}
	if status == watchstatus.Completed {
		entry.EndDate = &currentTime
	}

	if err := service.repository.Create(context, entry); err != nil {
		return nil, storeFailure(err)
	}

	service.logger.Info("entry_created",
		slog.String("entry_id", entry.ID),
		slog.String("owner_id", ownerID),
		slog.String("status", string(entry.Status)),
	)

	return entry, nil
}

// Get returns one owned entry.
func (service *Service) Get(context context.Context, id, ownerID string) (*Entry, error) {
	entry, err := service.repository.FindByIDAndOwner(context, id, ownerID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return entry, nil
}

// List returns a page of the owner's library and the total number of matches.
func (service *Service) List(context context.Context, ownerID string, filter Filter, limit, offset int) ([]*Entry, int, error) {
	entries, total, err := service.repository.List(context, ownerID, filter, limit, offset)
	if err != nil {
		return nil, 0, storeFailure(err)
	}
	return entries, total, nil
}

/*
Search finds owned entries by title substring.

Returns:
  - error: VALIDATION_ERROR when the query is blank
*/
func (service *Service) Search(context context.Context, ownerID, query string, limit int) ([]*Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validate.RequiredError(FieldQuery, "Search term required")
	}

	entries, err := service.repository.Search(context, ownerID, query, limit)
	if err != nil {
		return nil, storeFailure(err)
	}
	return entries, nil
}

/*
Update applies a client edit to an owned entry in a single write.

Description: Episode and total edits are clamped and, unless the patch sets
a status explicitly, the status is re-derived with the same rule as a
progress edit. A manual status (on hold, dropped) survives a patch that does
not change the episode. Start and end dates follow the progress rules and
are never overwritten once set.

Parameters:
  - context: context.Context
  - id, ownerID: string
  - patch: Patch

Returns:
  - *Entry: The entry after the write
  - error: NOT_FOUND, VALIDATION_ERROR, CONFLICT or STORE_UNAVAILABLE
*/
func (service *Service) Update(context context.Context, id, ownerID string, patch Patch) (*Entry, error) {
	current, err := service.repository.FindByIDAndOwner(context, id, ownerID)
	if err != nil {
		return nil, storeFailure(err)
	}

	fields, err := service.fieldsFromPatch(current, patch)
	if err != nil {
		return nil, err
	}

	if fields.IsEmpty() {
		return current, nil
	}

	updated, err := service.repository.UpdateFields(context, id, ownerID, fields)
	if err != nil {
		return nil, storeFailure(err)
	}

	service.logger.Info("entry_updated",
		slog.String("entry_id", id),
		slog.String("owner_id", ownerID),
		slog.String("status", string(updated.Status)),
	)

	return updated, nil
}

// fieldsFromPatch validates a patch against the stored entry and resolves it
// into the columns to write.
func (service *Service) fieldsFromPatch(current *Entry, patch Patch) (Fields, error) {
	validator := &validate.Validator{}
	fields := Fields{}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		titleKey := slug.From(title)
		validator.Required(FieldTitle, title).MaxLen(FieldTitle, title, maxTitleLength)
		validator.Custom(FieldTitle, title != "" && titleKey == "", "Must contain at least one letter or digit")
		fields.Title = &title
		fields.TitleKey = &titleKey
	}
	if patch.CoverImage != nil {
		validator.HTTPURL(FieldCoverImage, *patch.CoverImage)
		fields.CoverImage = patch.CoverImage
	}
	if patch.CurrentEpisode != nil {
		validator.Max(FieldCurrentEpisode, *patch.CurrentEpisode, maxCount)
	}
	if patch.CurrentSeason != nil {
		validator.Range(FieldCurrentSeason, *patch.CurrentSeason, 1, maxCount)
		fields.CurrentSeason = patch.CurrentSeason
	}
	if patch.TotalSeasons != nil {
		validator.Range(FieldTotalSeasons, *patch.TotalSeasons, 1, maxCount)
		fields.TotalSeasons = patch.TotalSeasons
	}
	if patch.Notes != nil {
		validator.MaxLen(FieldNotes, *patch.Notes, maxNotesLength)
		fields.Notes = patch.Notes
	}
	if patch.Status != nil {
		validateStatus(validator, *patch.Status)
	}
	if patch.Genres != nil {
		validateGenres(validator, patch.Genres)
		fields.Genres = normaliseGenres(patch.Genres)
	}
	validateTotal(validator, patch.TotalEpisodes)
	validateRating(validator, patch.Rating)

	if err := validator.Err(); err != nil {
		return Fields{}, err
	}

	fields.Favorite = patch.Favorite
	fields.ClearRating = patch.ClearRating
	if !patch.ClearRating {
		fields.Rating = patch.Rating
	}

	// Effective total after the patch.
	total := current.TotalEpisodes
	totalChanged := false
	switch {
	case patch.ClearTotalEpisodes:
		total = nil
		totalChanged = current.TotalEpisodes != nil
		fields.ClearTotalEpisodes = totalChanged
	case patch.TotalEpisodes != nil:
		total = patch.TotalEpisodes
		totalChanged = !pointer.Equal(current.TotalEpisodes, total)
		if totalChanged {
			fields.TotalEpisodes = total
		}
	}

	// Episode, clamped against the effective total.
	requested := current.CurrentEpisode
	if patch.CurrentEpisode != nil {
		requested = *patch.CurrentEpisode
	}
	episode := watchstatus.Clamp(requested, total)
	episodeChanged := episode != current.CurrentEpisode
	if episodeChanged {
		fields.CurrentEpisode = &episode
	}

	// Status: explicit wins, otherwise derive when progress inputs moved.
	status := current.Status
	switch {
	case patch.Status != nil:
		status = *patch.Status
	case episodeChanged:
		status = watchstatus.Derive(current.Status, episode, total)
	case totalChanged && !watchstatus.IsManual(current.Status):
		status = watchstatus.Derive(current.Status, episode, total)
	}
	if status != current.Status {
		fields.Status = &status
	}

	currentTime := service.now()
	if current.CurrentEpisode == 0 && episode > 0 && current.StartDate == nil {
		fields.StartDate = &currentTime
	}
	if status == watchstatus.Completed && current.EndDate == nil {
		fields.EndDate = &currentTime
	}

	return fields, nil
}

// Delete removes an owned entry.
func (service *Service) Delete(context context.Context, id, ownerID string) error {
	if err := service.repository.DeleteByIDAndOwner(context, id, ownerID); err != nil {
		return storeFailure(err)
	}

	service.logger.Info("entry_deleted", slog.String("entry_id", id), slog.String("owner_id", ownerID))
	return nil
}

/*
QuickAction applies a one-tap change.

Description: pause and drop set the manual statuses directly and leave
progress untouched. favorite and unfavorite toggle the flag.

Returns:
  - error: VALIDATION_ERROR for an unknown action, NOT_FOUND, STORE_UNAVAILABLE
*/
func (service *Service) QuickAction(context context.Context, id, ownerID string, action Action) (*Entry, error) {
	fields := Fields{}

	switch action {
	case ActionPause:
		fields.Status = statusPtr(watchstatus.OnHold)
	case ActionDrop:
		fields.Status = statusPtr(watchstatus.Dropped)
	case ActionFavorite:
		favorite := true
		fields.Favorite = &favorite
	case ActionUnfavorite:
		favorite := false
		fields.Favorite = &favorite
	default:
		return nil, validate.RequiredError(FieldAction, "Must be one of: pause, drop, favorite, unfavorite")
	}

	updated, err := service.repository.UpdateFields(context, id, ownerID, fields)
	if err != nil {
		return nil, storeFailure(err)
	}

	service.logger.Info("entry_quick_action",
		slog.String("entry_id", id),
		slog.String("owner_id", ownerID),
		slog.String("action", string(action)),
	)

	return updated, nil
}

// Stats summarises the owner's library.
func (service *Service) Stats(context context.Context, ownerID string) (*Stats, error) {
	stats, err := service.repository.Stats(context, ownerID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return stats, nil
}

// # Helpers

// storeFailure keeps classified errors and reports anything else as a
// storage outage.
func storeFailure(err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	return apperr.StoreUnavailable(err)
}

func statusPtr(status watchstatus.Status) *watchstatus.Status {
	return &status
}

func validateStatus(validator *validate.Validator, status watchstatus.Status) {
	validator.OneOf(FieldStatus, string(status), watchstatus.Strings()...)
}

func validateTotal(validator *validate.Validator, total *int) {
	if total != nil {
		validator.Range(FieldTotalEpisodes, *total, 0, maxCount)
	}
}

func validateRating(validator *validate.Validator, rating *float64) {
	if rating != nil {
		validator.Custom(FieldRating, *rating < minRating || *rating > maxRating, "Must be between 0 and 10")
	}
}

func validateGenres(validator *validate.Validator, genres []string) {
	validator.Custom(FieldGenres, len(genres) > maxGenres, "Maximum 20 genres")
	for _, genre := range genres {
		validator.MaxLen(FieldGenres, genre, maxGenreLength)
	}
}

// normaliseGenres trims, drops blanks and removes duplicates, keeping order.
func normaliseGenres(genres []string) []string {
	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, genre := range genres {
		genre = strings.TrimSpace(genre)
		key := strings.ToLower(genre)
		if genre == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, genre)
	}
	return out
}
