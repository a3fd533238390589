// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles passwordless user identities, profiles and themes.

A user is identified by a username plus a device secret that the client
generates once and keeps locally. Presenting both again returns the same
account and a fresh access token.

# Architecture

  - Entities: User, Theme.
  - Premium: the premium flag is flipped by the billing package through
    [Service.MarkPremium] and unlocks the premium themes.
*/
package account

import (
	"context"
	"time"
)

// # Domain Entities

// User is a registered AnimeTrack identity.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	SecretHash        string     `json:"-"`
	AvatarURL         string     `json:"avatar_url"`
	IsPremium         bool       `json:"is_premium"`
	PremiumUnlockedAt *time.Time `json:"premium_unlocked_at"`
	SelectedTheme     string     `json:"selected_theme"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldUsername     = "username"
	FieldDeviceSecret = "device_secret"
	FieldTheme        = "theme"
)

// # Repository Contracts

// Repository defines the persistence contract for user accounts.
type Repository interface {
	/*
		FindByID retrieves a user by id.

		Returns:
		  - *User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername retrieves a user by username, ignoring case.

		Returns:
		  - error: apperr.NotFound when no account uses the name
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a new account.

		Returns:
		  - error: apperr.Conflict when the username is taken
	*/
	Create(context context.Context, user *User) error

	// UpdateTheme stores the selected theme key.
	UpdateTheme(context context.Context, id, theme string) error

	/*
		MarkPremium flips the premium flag. The unlock time is only written
		the first time.
	*/
	MarkPremium(context context.Context, id string, at time.Time) error
}
