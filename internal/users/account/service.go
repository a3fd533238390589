// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/constants"
	"github.com/taibuivan/animetrack/internal/platform/sec"
	"github.com/taibuivan/animetrack/internal/platform/validate"
	"github.com/taibuivan/animetrack/pkg/uuid"
)

// Identity constraints.
const (
	minUsernameLength = 2
	maxUsernameLength = 20
	minSecretLength   = 16
	maxSecretLength   = 72 // bcrypt input limit
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(userID, username string, timeToLive time.Duration) (string, error)
}

// # Service Layer

// Service implements the account use cases.
type Service struct {
	repository Repository
	tokens     TokenIssuer
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new account [Service].
func NewService(repository Repository, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		tokens:     tokens,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetupInput identifies a device.
type SetupInput struct {
	Username     string `json:"username"`
	DeviceSecret string `json:"device_secret"`
}

// Session is the result of a successful setup.
type Session struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
}

/*
Setup returns the account for a username, creating it on first use.

Description: A new username is registered with the hash of the device
secret. An existing username is only returned when the secret matches, so a
second device cannot take over a name that is already in use.

Parameters:
  - context: context.Context
  - input: SetupInput

Returns:
  - *Session: The account and a signed access token
  - error: VALIDATION_ERROR, CONFLICT (name taken by another device)
*/
func (service *Service) Setup(context context.Context, input SetupInput) (*Session, error) {
	username := strings.TrimSpace(input.Username)

	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		MinLen(FieldUsername, username, minUsernameLength).
		MaxLen(FieldUsername, username, maxUsernameLength)
	validator.Required(FieldDeviceSecret, input.DeviceSecret).
		MinLen(FieldDeviceSecret, input.DeviceSecret, minSecretLength).
		MaxLen(FieldDeviceSecret, input.DeviceSecret, maxSecretLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.repository.FindByUsername(context, username)
	switch {
	case err == nil:
		if !sec.CheckSecretHash(input.DeviceSecret, user.SecretHash) {
			return nil, apperr.Conflict("Username is already taken")
		}
	case apperr.HasCode(err, apperr.CodeNotFound):
		user, err = service.register(context, username, input.DeviceSecret)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	token, err := service.tokens.GenerateAccessToken(user.ID, user.Username, constants.AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("account_service_token_failed: %w", err))
	}

	return &Session{User: user, AccessToken: token}, nil
}

func (service *Service) register(context context.Context, username, deviceSecret string) (*User, error) {
	hash, err := sec.HashSecret(deviceSecret)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
	}

	currentTime := service.now()
	user := &User{
		ID:            uuid.New(),
		Username:      username,
		SecretHash:    hash,
		SelectedTheme: DefaultTheme,
		CreatedAt:     currentTime,
		UpdatedAt:     currentTime,
	}

	if err := service.repository.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_registered", slog.String("user_id", user.ID), slog.String("username", username))
	return user, nil
}

// Profile returns the authenticated user's account.
func (service *Service) Profile(context context.Context, userID string) (*User, error) {
	return service.repository.FindByID(context, userID)
}

// Themes returns the theme catalog.
func (service *Service) Themes() []Theme {
	return Themes()
}

/*
SelectTheme changes the user's active theme.

Returns:
  - *User: The account after the change
  - error: VALIDATION_ERROR (unknown key), FORBIDDEN (premium theme without premium)
*/
func (service *Service) SelectTheme(context context.Context, userID, key string) (*User, error) {
	theme, ok := LookupTheme(key)
	if !ok {
		return nil, validate.RequiredError(FieldTheme, "Unknown theme")
	}

	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if theme.IsPremium && !user.IsPremium {
		return nil, apperr.Forbidden("This theme requires premium")
	}

	if err := service.repository.UpdateTheme(context, userID, theme.Key); err != nil {
		return nil, err
	}

	user.SelectedTheme = theme.Key
	service.logger.Info("user_theme_selected", slog.String("user_id", userID), slog.String("theme", theme.Key))
	return user, nil
}

// MarkPremium unlocks the premium themes for a user. Calling it again keeps
// the original unlock time.
func (service *Service) MarkPremium(context context.Context, userID string, at time.Time) error {
	if err := service.repository.MarkPremium(context, userID, at); err != nil {
		return err
	}

	service.logger.Info("user_premium_unlocked", slog.String("user_id", userID))
	return nil
}
