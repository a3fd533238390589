// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entry

import "context"

// # Entry Data Access

// Repository defines the data access contract for tracked entries.
//
// Every method that addresses a single entry takes the owner id and must
// treat a foreign entry exactly like a missing one.
type Repository interface {

	/*
		FindByIDAndOwner returns the entry with the given id owned by ownerID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)
		  - ownerID: string (UUID)

		Returns:
		  - *Entry: The hydrated domain entity
		  - error: apperr.NotFound if missing or not owned, apperr.StoreUnavailable otherwise
	*/
	FindByIDAndOwner(context context.Context, id, ownerID string) (*Entry, error)

	/*
		Create persists a new entry.

		Parameters:
		  - context: context.Context
		  - entry: *Entry (ID, owner and title key already set)

		Returns:
		  - error: apperr.Conflict on a duplicate title key for the owner
	*/
	Create(context context.Context, entry *Entry) error

	/*
		UpdateFields applies a partial update in a single statement and
		returns the row as stored afterwards.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)
		  - ownerID: string (UUID)
		  - fields: Fields (nil members are left untouched)

		Returns:
		  - *Entry: The entry after the write
		  - error: apperr.NotFound if missing or not owned
	*/
	UpdateFields(context context.Context, id, ownerID string, fields Fields) (*Entry, error)

	/*
		DeleteByIDAndOwner removes an entry.

		Returns:
		  - error: apperr.NotFound if nothing was deleted
	*/
	DeleteByIDAndOwner(context context.Context, id, ownerID string) error

	/*
		List returns a page of the owner's entries, most recently updated first.

		Returns:
		  - []*Entry: The page
		  - int: Total count matching the filter
		  - error: Retrieval failures
	*/
	List(context context.Context, ownerID string, filter Filter, limit, offset int) ([]*Entry, int, error)

	/*
		Search returns the owner's entries whose title contains query,
		case-insensitively, most recently updated first.
	*/
	Search(context context.Context, ownerID, query string, limit int) ([]*Entry, error)

	/*
		Stats aggregates the owner's library.
	*/
	Stats(context context.Context, ownerID string) (*Stats, error)
}
