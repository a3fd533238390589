// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/ctxutil"
	"github.com/taibuivan/animetrack/internal/platform/sec"
	"github.com/taibuivan/animetrack/internal/users/account"
)

const deviceSecret = "3b1f0c9e-device-secret"

// memoryRepository is an in-memory [account.Repository].
type memoryRepository struct {
	mu    sync.Mutex
	users map[string]*account.User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: make(map[string]*account.User)}
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*account.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	copied := *user
	return &copied, nil
}

func (repository *memoryRepository) FindByUsername(_ context.Context, username string) (*account.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, user := range repository.users {
		if strings.EqualFold(user.Username, username) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repository *memoryRepository) Create(_ context.Context, user *account.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	copied := *user
	repository.users[user.ID] = &copied
	return nil
}

func (repository *memoryRepository) UpdateTheme(_ context.Context, id, theme string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[id]
	if !ok {
		return apperr.NotFound("Account")
	}
	user.SelectedTheme = theme
	return nil
}

func (repository *memoryRepository) MarkPremium(_ context.Context, id string, at time.Time) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[id]
	if !ok {
		return apperr.NotFound("Account")
	}
	user.IsPremium = true
	if user.PremiumUnlockedAt == nil {
		user.PremiumUnlockedAt = &at
	}
	return nil
}

// stubIssuer returns a predictable token per user.
type stubIssuer struct {
	err error
}

func (issuer stubIssuer) GenerateAccessToken(userID, _ string, _ time.Duration) (string, error) {
	if issuer.err != nil {
		return "", issuer.err
	}
	return "token-" + userID, nil
}

func newService(repository account.Repository) *account.Service {
	return account.NewService(repository, stubIssuer{}, slog.New(slog.DiscardHandler))
}

func TestSetup(t *testing.T) {
	ctx := context.Background()
	service := newService(newMemoryRepository())

	first, err := service.Setup(ctx, account.SetupInput{Username: "  Kaito ", DeviceSecret: deviceSecret})
	require.NoError(t, err)
	assert.Equal(t, "Kaito", first.User.Username)
	assert.Equal(t, account.DefaultTheme, first.User.SelectedTheme)
	assert.False(t, first.User.IsPremium)
	assert.Equal(t, "token-"+first.User.ID, first.AccessToken)
	assert.NotEqual(t, deviceSecret, first.User.SecretHash)

	t.Run("same_device_gets_same_account", func(t *testing.T) {
		again, err := service.Setup(ctx, account.SetupInput{Username: "kaito", DeviceSecret: deviceSecret})
		require.NoError(t, err)
		assert.Equal(t, first.User.ID, again.User.ID)
	})

	t.Run("other_device_conflicts", func(t *testing.T) {
		_, err := service.Setup(ctx, account.SetupInput{Username: "KAITO", DeviceSecret: "another-device-secret"})
		assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	})

	t.Run("user_json_hides_hash", func(t *testing.T) {
		encoded, err := json.Marshal(first.User)
		require.NoError(t, err)
		assert.NotContains(t, string(encoded), first.User.SecretHash)
	})
}

func TestSetup_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input account.SetupInput
		field string
	}{
		{"short_username", account.SetupInput{Username: "k", DeviceSecret: deviceSecret}, account.FieldUsername},
		{"long_username", account.SetupInput{Username: strings.Repeat("k", 21), DeviceSecret: deviceSecret}, account.FieldUsername},
		{"blank_username", account.SetupInput{Username: "   ", DeviceSecret: deviceSecret}, account.FieldUsername},
		{"short_secret", account.SetupInput{Username: "kaito", DeviceSecret: "abc"}, account.FieldDeviceSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(newMemoryRepository()).Setup(context.Background(), tt.input)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}
}

func TestSetup_TokenFailure(t *testing.T) {
	service := account.NewService(newMemoryRepository(), stubIssuer{err: errors.New("no key")}, slog.New(slog.DiscardHandler))
	_, err := service.Setup(context.Background(), account.SetupInput{Username: "kaito", DeviceSecret: deviceSecret})
	assert.True(t, apperr.HasCode(err, apperr.CodeInternal))
}

func TestThemes(t *testing.T) {
	themes := account.Themes()
	require.Len(t, themes, 27)

	free := 0
	keys := make(map[string]bool)
	for _, theme := range themes {
		if !theme.IsPremium {
			free++
		}
		assert.False(t, keys[theme.Key], "duplicate key %s", theme.Key)
		keys[theme.Key] = true
	}
	assert.Equal(t, 7, free)

	_, ok := account.LookupTheme(account.DefaultTheme)
	assert.True(t, ok)
}

func TestSelectTheme(t *testing.T) {
	ctx := context.Background()
	repository := newMemoryRepository()
	service := newService(repository)

	session, err := service.Setup(ctx, account.SetupInput{Username: "kaito", DeviceSecret: deviceSecret})
	require.NoError(t, err)
	userID := session.User.ID

	user, err := service.SelectTheme(ctx, userID, "oceanBlue")
	require.NoError(t, err)
	assert.Equal(t, "oceanBlue", user.SelectedTheme)

	_, err = service.SelectTheme(ctx, userID, "auroraGlow")
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = service.SelectTheme(ctx, userID, "rainbow")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	unlockedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, service.MarkPremium(ctx, userID, unlockedAt))
	require.NoError(t, service.MarkPremium(ctx, userID, unlockedAt.Add(time.Hour)))

	user, err = service.SelectTheme(ctx, userID, "auroraGlow")
	require.NoError(t, err)
	assert.Equal(t, "auroraGlow", user.SelectedTheme)
	assert.True(t, user.IsPremium)
	require.NotNil(t, user.PremiumUnlockedAt)
	assert.Equal(t, unlockedAt, *user.PremiumUnlockedAt)

	assert.True(t, apperr.HasCode(service.MarkPremium(ctx, "missing", unlockedAt), apperr.CodeNotFound))
}

func TestHandler(t *testing.T) {
	repository := newMemoryRepository()
	service := newService(repository)
	handler := account.NewHandler(service)

	session, err := service.Setup(context.Background(), account.SetupInput{Username: "kaito", DeviceSecret: deviceSecret})
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Header.Get("X-Test-User") != "" {
				claims := &sec.AuthClaims{UserID: request.Header.Get("X-Test-User")}
				request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
			}
			next.ServeHTTP(writer, request)
		})
	})
	router.Mount("/users", handler.UserRoutes())
	router.Mount("/themes", handler.ThemeRoutes())

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		userID   string
		wantCode int
	}{
		{"setup", http.MethodPost, "/users/setup", `{"username":"kaito","device_secret":"` + deviceSecret + `"}`, "", http.StatusOK},
		{"setup_conflict", http.MethodPost, "/users/setup", `{"username":"kaito","device_secret":"0000000000000000000"}`, "", http.StatusConflict},
		{"setup_bad_json", http.MethodPost, "/users/setup", `{`, "", http.StatusBadRequest},
		{"me", http.MethodGet, "/users/me", "", session.User.ID, http.StatusOK},
		{"me_anonymous", http.MethodGet, "/users/me", "", "", http.StatusUnauthorized},
		{"themes", http.MethodGet, "/themes", "", "", http.StatusOK},
		{"theme_free", http.MethodPut, "/users/me/theme", `{"theme":"darkNight"}`, session.User.ID, http.StatusOK},
		{"theme_premium", http.MethodPut, "/users/me/theme", `{"theme":"twilight"}`, session.User.ID, http.StatusForbidden},
		{"theme_unknown", http.MethodPut, "/users/me/theme", `{"theme":"nope"}`, session.User.ID, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.userID != "" {
				request.Header.Set("X-Test-User", tt.userID)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)
			assert.Equal(t, tt.wantCode, recorder.Code, recorder.Body.String())
		})
	}
}
