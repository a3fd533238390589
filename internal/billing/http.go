// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/constants"
	requestutil "github.com/taibuivan/animetrack/internal/platform/request"
	"github.com/taibuivan/animetrack/internal/platform/respond"
)

const maxWebhookBytes = 64 << 10

// Handler implements the HTTP layer for premium billing.
type Handler struct {
	service *Service
}

// NewHandler constructs a new billing [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the billing endpoints.
// Only checkout requires authentication; the webhook is authenticated by
// its signature.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/checkout", handler.createCheckout)
	router.Post("/webhook", handler.webhook)
	router.Get("/status/{sessionID}", handler.status)
	return router
}

/*
POST /api/v1/billing/checkout.

Response:
  - 200: CheckoutSession
  - 400: VALIDATION_ERROR (already premium)
  - 503: SERVICE_UNAVAILABLE (Stripe unreachable)
*/
func (handler *Handler) createCheckout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.CreateCheckout(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
POST /api/v1/billing/webhook.

Request:
  - body: raw Stripe event (signed bytes, never re-encoded)
  - Stripe-Signature: t=..,v1=..

Response:
  - 200: {"received": true}
  - 400: VALIDATION_ERROR (signature or payload)
*/
func (handler *Handler) webhook(writer http.ResponseWriter, request *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, maxWebhookBytes))
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid webhook payload"))
		return
	}

	if err := handler.service.HandleWebhook(request.Context(), payload, request.Header.Get(constants.HeaderStripeSig)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, map[string]bool{"received": true})
}

// statusView is the public part of a payment.
type statusView struct {
	Status    PaymentStatus `json:"status"`
	Amount    int           `json:"amount"`
	Currency  string        `json:"currency"`
	CreatedAt time.Time     `json:"created_at"`
}

// GET /api/v1/billing/status/{sessionID}.
func (handler *Handler) status(writer http.ResponseWriter, request *http.Request) {
	payment, err := handler.service.Status(request.Context(), requestutil.Param(request, "sessionID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, statusView{
		Status:    payment.Status,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		CreatedAt: payment.CreatedAt,
	})
}
