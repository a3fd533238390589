// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/animetrack/internal/platform/database/schema"
	"github.com/taibuivan/animetrack/internal/platform/dberr"
	"github.com/taibuivan/animetrack/internal/platform/postgres"
	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

const resourceEntry = "Entry"

// # Repository Implementation

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new Postgres implementation of the entry store.
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var entryColumns = strings.Join(schema.TrackerEntry.Columns(), ", ")

// scanEntry hydrates an [Entry] in the order of [schema.TrackerEntryTable.Columns].
func scanEntry(row pgx.Row) (*Entry, error) {
	entry := &Entry{}
	var status string

	err := row.Scan(
		&entry.ID,
		&entry.OwnerID,
		&entry.Title,
		&entry.CoverImage,
		&status,
		&entry.CurrentEpisode,
		&entry.TotalEpisodes,
		&entry.CurrentSeason,
		&entry.TotalSeasons,
		&entry.Rating,
		&entry.Genres,
		&entry.Notes,
		&entry.Favorite,
		&entry.StartDate,
		&entry.EndDate,
		&entry.MalID,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Status = watchstatus.Status(status)
	if entry.Genres == nil {
		entry.Genres = []string{}
	}
	return entry, nil
}

func collectEntries(rows pgx.Rows) ([]*Entry, error) {
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

/*
FindByIDAndOwner retrieves a single entry scoped to its owner.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - ownerID: string (UUID)

Returns:
  - *Entry: Hydrated entity
  - error: apperr.NotFound or apperr.StoreUnavailable
*/
func (repository *PostgresRepository) FindByIDAndOwner(context context.Context, id, ownerID string) (*Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		entryColumns, schema.TrackerEntry.Table, schema.TrackerEntry.ID, schema.TrackerEntry.OwnerID)

	entry, err := scanEntry(repository.db.QueryRow(context, query, id, ownerID))
	if err != nil {
		return nil, dberr.Wrap(err, resourceEntry)
	}
	return entry, nil
}

/*
Create inserts a new entry row.

Parameters:
  - context: context.Context
  - entry: *Entry

Returns:
  - error: apperr.Conflict when the owner already tracks the same title key
*/
func (repository *PostgresRepository) Create(context context.Context, entry *Entry) error {
	columns := append(schema.TrackerEntry.Columns(), schema.TrackerEntry.TitleKey)
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		schema.TrackerEntry.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	genres := entry.Genres
	if genres == nil {
		genres = []string{}
	}

	_, err := repository.db.Exec(context, query,
		entry.ID,
		entry.OwnerID,
		entry.Title,
		entry.CoverImage,
		string(entry.Status),
		entry.CurrentEpisode,
		entry.TotalEpisodes,
		entry.CurrentSeason,
		entry.TotalSeasons,
		entry.Rating,
		genres,
		entry.Notes,
		entry.Favorite,
		entry.StartDate,
		entry.EndDate,
		entry.MalID,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.TitleKey,
	)
	if err != nil {
		return dberr.Wrap(err, resourceEntry)
	}
	return nil
}

// setClauses accumulates the SET part of an UPDATE. The first two
// placeholders are reserved for id and owner.
type setClauses struct {
	clauses []string
	args    []any
}

func (s *setClauses) set(column string, value any) {
	s.args = append(s.args, value)
	s.clauses = append(s.clauses, fmt.Sprintf("%s = $%d", column, len(s.args)+2))
}

// setIfNull writes value only when the column is still NULL.
func (s *setClauses) setIfNull(column string, value any) {
	s.args = append(s.args, value)
	s.clauses = append(s.clauses, fmt.Sprintf("%s = COALESCE(%s, $%d)", column, column, len(s.args)+2))
}

func (s *setClauses) setNull(column string) {
	s.clauses = append(s.clauses, column+" = NULL")
}

/*
UpdateFields applies a partial update and returns the stored row.

Description: Builds a single UPDATE ... RETURNING statement from the non-nil
members of fields. Start and end dates go through COALESCE so an existing
value is never overwritten.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - ownerID: string (UUID)
  - fields: Fields

Returns:
  - *Entry: The row after the write
  - error: apperr.NotFound when no owned row matched
*/
func (repository *PostgresRepository) UpdateFields(context context.Context, id, ownerID string, fields Fields) (*Entry, error) {
	table := schema.TrackerEntry
	updates := &setClauses{}

	if fields.Title != nil {
		updates.set(table.Title, *fields.Title)
	}
	if fields.TitleKey != nil {
		updates.set(table.TitleKey, *fields.TitleKey)
	}
	if fields.CoverImage != nil {
		updates.set(table.CoverImage, *fields.CoverImage)
	}
	if fields.Status != nil {
		updates.set(table.Status, string(*fields.Status))
	}
	if fields.CurrentEpisode != nil {
		updates.set(table.CurrentEpisode, *fields.CurrentEpisode)
	}
	if fields.ClearTotalEpisodes {
		updates.setNull(table.TotalEpisodes)
	} else if fields.TotalEpisodes != nil {
		updates.set(table.TotalEpisodes, *fields.TotalEpisodes)
	}
	if fields.CurrentSeason != nil {
		updates.set(table.CurrentSeason, *fields.CurrentSeason)
	}
	if fields.TotalSeasons != nil {
		updates.set(table.TotalSeasons, *fields.TotalSeasons)
	}
	if fields.ClearRating {
		updates.setNull(table.Rating)
	} else if fields.Rating != nil {
		updates.set(table.Rating, *fields.Rating)
	}
	if fields.Genres != nil {
		updates.set(table.Genres, fields.Genres)
	}
	if fields.Notes != nil {
		updates.set(table.Notes, *fields.Notes)
	}
	if fields.Favorite != nil {
		updates.set(table.Favorite, *fields.Favorite)
	}
	if fields.MalID != nil {
		updates.set(table.MalID, *fields.MalID)
	}
	if fields.StartDate != nil {
		updates.setIfNull(table.StartDate, *fields.StartDate)
	}
	if fields.EndDate != nil {
		updates.setIfNull(table.EndDate, *fields.EndDate)
	}
	updates.set(table.UpdatedAt, time.Now().UTC())

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1 AND %s = $2 RETURNING %s`,
		table.Table, strings.Join(updates.clauses, ", "), table.ID, table.OwnerID, entryColumns)

	args := append([]any{id, ownerID}, updates.args...)
	entry, err := scanEntry(repository.db.QueryRow(context, query, args...))
	if err != nil {
		return nil, dberr.Wrap(err, resourceEntry)
	}
	return entry, nil
}

/*
DeleteByIDAndOwner physically removes an owned entry.

Returns:
  - error: apperr.NotFound if nothing matched
*/
func (repository *PostgresRepository) DeleteByIDAndOwner(context context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.TrackerEntry.Table, schema.TrackerEntry.ID, schema.TrackerEntry.OwnerID)

	tag, err := repository.db.Exec(context, query, id, ownerID)
	if err != nil {
		return dberr.Wrap(err, resourceEntry)
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, resourceEntry)
	}
	return nil
}

// whereOwner builds the WHERE clause shared by List and its count query.
func whereOwner(ownerID string, filter Filter) (string, []any) {
	conditions := []string{schema.TrackerEntry.OwnerID + " = $1"}
	args := []any{ownerID}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		args = append(args, statuses)
		conditions = append(conditions, fmt.Sprintf("%s = ANY($%d)", schema.TrackerEntry.Status, len(args)))
	}

	if filter.Favorite != nil {
		args = append(args, *filter.Favorite)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", schema.TrackerEntry.Favorite, len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

/*
List returns a filtered page of the owner's library.

Parameters:
  - context: context.Context
  - ownerID: string
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Entry: The page, most recently updated first
  - int: Total number of matching entries
  - error: apperr.StoreUnavailable
*/
func (repository *PostgresRepository) List(context context.Context, ownerID string, filter Filter, limit, offset int) ([]*Entry, int, error) {
	where, args := whereOwner(ownerID, filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, schema.TrackerEntry.Table, where)
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, resourceEntry)
	}

	pageArgs := append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC, %s DESC LIMIT $%d OFFSET $%d`,
		entryColumns, schema.TrackerEntry.Table, where,
		schema.TrackerEntry.UpdatedAt, schema.TrackerEntry.ID,
		len(pageArgs)-1, len(pageArgs))

	rows, err := repository.db.Query(context, query, pageArgs...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, resourceEntry)
	}

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, 0, dberr.Wrap(err, resourceEntry)
	}
	return entries, total, nil
}

// likeEscaper neutralises LIKE wildcards in user input.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

/*
Search finds entries whose title contains the query, ignoring case.
*/
func (repository *PostgresRepository) Search(context context.Context, ownerID, query string, limit int) ([]*Entry, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s ILIKE '%%' || $2 || '%%' ORDER BY %s DESC LIMIT $3`,
		entryColumns, schema.TrackerEntry.Table, schema.TrackerEntry.OwnerID,
		schema.TrackerEntry.Title, schema.TrackerEntry.UpdatedAt)

	rows, err := repository.db.Query(context, sql, ownerID, likeEscaper.Replace(query), limit)
	if err != nil {
		return nil, dberr.Wrap(err, resourceEntry)
	}

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, dberr.Wrap(err, resourceEntry)
	}
	return entries, nil
}

/*
Stats computes per-status counts and the episode total in one pass.
*/
func (repository *PostgresRepository) Stats(context context.Context, ownerID string) (*Stats, error) {
	table := schema.TrackerEntry
	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE %[1]s = 'to_watch'),
			COUNT(*) FILTER (WHERE %[1]s = 'watching'),
			COUNT(*) FILTER (WHERE %[1]s = 'completed'),
			COUNT(*) FILTER (WHERE %[1]s = 'on_hold'),
			COUNT(*) FILTER (WHERE %[1]s = 'dropped'),
			COUNT(*) FILTER (WHERE %[2]s),
			COALESCE(SUM(%[3]s), 0)
		FROM %[4]s
		WHERE %[5]s = $1`,
		table.Status, table.Favorite, table.CurrentEpisode, table.Table, table.OwnerID)

	stats := &Stats{}
	err := repository.db.QueryRow(context, query, ownerID).Scan(
		&stats.Total,
		&stats.ToWatch,
		&stats.Watching,
		&stats.Completed,
		&stats.OnHold,
		&stats.Dropped,
		&stats.Favorites,
		&stats.TotalEpisodesWatched,
	)
	if err != nil {
		return nil, dberr.Wrap(err, resourceEntry)
	}
	return stats, nil
}
