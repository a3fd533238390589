// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/animetrack/internal/platform/request"
	"github.com/taibuivan/animetrack/internal/platform/respond"
)

// Handler implements the HTTP layer for accounts and themes.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// UserRoutes returns the /users endpoints. Only setup is public.
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/setup", handler.setup)
	router.Get("/me", handler.getMe)
	router.Put("/me/theme", handler.selectTheme)

	return router
}

// ThemeRoutes returns the public /themes endpoints.
func (handler *Handler) ThemeRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listThemes)
	return router
}

/*
POST /api/v1/users/setup.

Request:
  - body: SetupInput

Response:
  - 200: Session (user + access token)
  - 400: VALIDATION_ERROR
  - 409: CONFLICT (username owned by another device)
*/
func (handler *Handler) setup(writer http.ResponseWriter, request *http.Request) {
	var input SetupInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.accountService.Setup(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// GET /api/v1/users/me.
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Profile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// selectThemeRequest is the body of PUT /users/me/theme.
type selectThemeRequest struct {
	Theme string `json:"theme"`
}

/*
PUT /api/v1/users/me/theme.

Response:
  - 200: User
  - 400: VALIDATION_ERROR (unknown theme)
  - 403: FORBIDDEN (premium theme)
*/
func (handler *Handler) selectTheme(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body selectThemeRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.SelectTheme(request.Context(), userID, body.Theme)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// GET /api/v1/themes.
func (handler *Handler) listThemes(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, handler.accountService.Themes())
}
