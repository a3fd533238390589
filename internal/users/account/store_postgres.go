// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/database/schema"
	"github.com/taibuivan/animetrack/internal/platform/dberr"
	"github.com/taibuivan/animetrack/internal/platform/postgres"
)

const resourceAccount = "Account"

// # Repository Implementation

// PostgresRepository implements [Repository] on the users.account table.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new Postgres implementation for accounts.
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var accountColumns = strings.Join(schema.UserAccount.Columns(), ", ")

// scanUser hydrates a [User] in the order of [schema.UserAccountTable.Columns].
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.SecretHash,
		&user.AvatarURL,
		&user.IsPremium,
		&user.PremiumUnlockedAt,
		&user.SelectedTheme,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, resourceAccount)
	}
	return user, nil
}

// FindByID retrieves a user from users.account.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountColumns, schema.UserAccount.Table, schema.UserAccount.ID,
	)
	return scanUser(repository.db.QueryRow(context, query, id))
}

// FindByUsername matches on LOWER(username), the same expression the unique index uses.
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE LOWER(%s) = LOWER($1)`,
		accountColumns, schema.UserAccount.Table, schema.UserAccount.Username,
	)
	return scanUser(repository.db.QueryRow(context, query, username))
}

// Create inserts a new account row.
func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.UserAccount.Table, accountColumns,
	)

	_, err := repository.db.Exec(context, query,
		user.ID,
		user.Username,
		user.SecretHash,
		user.AvatarURL,
		user.IsPremium,
		user.PremiumUnlockedAt,
		user.SelectedTheme,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		wrapped := dberr.Wrap(err, resourceAccount)
		if apperr.HasCode(wrapped, apperr.CodeConflict) {
			return apperr.Conflict("Username is already taken")
		}
		return wrapped
	}
	return nil
}

// UpdateTheme stores the selected theme and bumps updatedat.
func (repository *PostgresRepository) UpdateTheme(context context.Context, id, theme string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.SelectedTheme,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID,
	)
	return repository.execOne(context, query, id, theme)
}

// MarkPremium sets ispremium and keeps the first unlock timestamp.
func (repository *PostgresRepository) MarkPremium(context context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = COALESCE(%s, $2), %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.IsPremium,
		schema.UserAccount.PremiumUnlockedAt, schema.UserAccount.PremiumUnlockedAt,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID,
	)
	return repository.execOne(context, query, id, at)
}

// execOne runs a single-row update and reports NotFound when nothing matched.
func (repository *PostgresRepository) execOne(context context.Context, query string, args ...any) error {
	tag, err := repository.db.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, resourceAccount)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceAccount)
	}
	return nil
}
