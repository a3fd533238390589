// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/constants"
	"github.com/taibuivan/animetrack/internal/users/account"
	"github.com/taibuivan/animetrack/pkg/uuid"
)

// Accounts is the part of the account service billing depends on.
type Accounts interface {
	Profile(context context.Context, userID string) (*account.User, error)
	MarkPremium(context context.Context, userID string, at time.Time) error
}

// Settings configures the checkout flow.
type Settings struct {
	// WebhookSecret is the Stripe endpoint signing secret.
	WebhookSecret string
	// FrontendURL receives the success and cancel redirects.
	FrontendURL string
}

// # Service Layer

// Service implements premium checkout and webhook processing.
type Service struct {
	repository Repository
	provider   CheckoutProvider
	ledger     EventLedger
	accounts   Accounts
	settings   Settings
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new billing [Service].
func NewService(
	repository Repository,
	provider CheckoutProvider,
	ledger EventLedger,
	accounts Accounts,
	settings Settings,
	logger *slog.Logger,
) *Service {
	return &Service{
		repository: repository,
		provider:   provider,
		ledger:     ledger,
		accounts:   accounts,
		settings:   settings,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for payment and premium timestamps.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

/*
CreateCheckout opens a Stripe Checkout session for the premium pack.

Parameters:
  - context: context.Context
  - userID: string (authenticated user)

Returns:
  - *CheckoutSession: Session id and redirect URL
  - error: VALIDATION_ERROR (already premium), NOT_FOUND, SERVICE_UNAVAILABLE
*/
func (service *Service) CreateCheckout(context context.Context, userID string) (*CheckoutSession, error) {
	user, err := service.accounts.Profile(context, userID)
	if err != nil {
		return nil, err
	}
	if user.IsPremium {
		return nil, apperr.ValidationError("Premium is already unlocked")
	}

	frontend := strings.TrimRight(service.settings.FrontendURL, "/")
	session, err := service.provider.CreateSession(context, CheckoutRequest{
		UserID:      user.ID,
		Username:    user.Username,
		Amount:      constants.PremiumThemesPriceCents,
		Currency:    constants.PremiumThemesCurrency,
		ProductType: constants.ProductPremiumThemes,
		SuccessURL:  frontend + "/profile?payment=success",
		CancelURL:   frontend + "/profile?payment=cancelled",
	})
	if err != nil {
		service.logger.ErrorContext(context, "billing_checkout_failed", slog.String("user_id", userID), slog.Any("error", err))
		return nil, apperr.ServiceUnavailable("Payment provider is unavailable", err)
	}

	currentTime := service.now()
	payment := &Payment{
		ID:          uuid.New(),
		UserID:      user.ID,
		Username:    user.Username,
		SessionID:   session.SessionID,
		Amount:      constants.PremiumThemesPriceCents,
		Currency:    constants.PremiumThemesCurrency,
		Status:      PaymentPending,
		ProductType: constants.ProductPremiumThemes,
		CreatedAt:   currentTime,
		UpdatedAt:   currentTime,
	}
	if err := service.repository.Create(context, payment); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "billing_checkout_created",
		slog.String("user_id", userID),
		slog.String("session_id", session.SessionID),
	)

	return session, nil
}

/*
HandleWebhook verifies and processes one Stripe delivery.

Description: Events already processed within the ledger window are
acknowledged without side effects. When processing fails the event id is
released again so Stripe's retry is handled.

Parameters:
  - payload: []byte (raw request body)
  - signatureHeader: string (Stripe-Signature)

Returns:
  - error: VALIDATION_ERROR for a bad signature or body, processing errors otherwise
*/
func (service *Service) HandleWebhook(context context.Context, payload []byte, signatureHeader string) error {
	event, err := VerifyEvent(payload, signatureHeader, service.settings.WebhookSecret, constants.WebhookTolerance)
	switch {
	case err != nil && isSignatureError(err):
		service.logger.WarnContext(context, "billing_webhook_rejected", slog.Any("error", err))
		return apperr.ValidationError("Invalid webhook signature")
	case err != nil || event.ID == "":
		return apperr.ValidationError("Invalid webhook payload")
	}

	first, err := service.ledger.FirstSeen(context, event.ID)
	switch {
	case err != nil:
		// Handlers are idempotent.
		service.logger.WarnContext(context, "billing_ledger_unavailable", slog.String("event_id", event.ID), slog.Any("error", err))
	case !first:
		service.logger.InfoContext(context, "billing_webhook_duplicate", slog.String("event_id", event.ID))
		return nil
	}

	if err := service.dispatch(context, event); err != nil {
		if forgetErr := service.ledger.Forget(context, event.ID); forgetErr != nil {
			service.logger.WarnContext(context, "billing_ledger_release_failed", slog.String("event_id", event.ID), slog.Any("error", forgetErr))
		}
		return err
	}

	return nil
}

func (service *Service) dispatch(context context.Context, event stripe.Event) error {
	switch event.Type {
	case EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := decodeObject(event, &session); err != nil || session.ID == "" {
			return apperr.ValidationError("Invalid checkout session")
		}
		return service.completeCheckout(context, &session)

	case EventPaymentFailed:
		var intent stripe.PaymentIntent
		if err := decodeObject(event, &intent); err != nil || intent.ID == "" {
			return apperr.ValidationError("Invalid payment intent")
		}
		return service.failPayment(context, &intent)

	default:
		service.logger.InfoContext(context, "billing_webhook_ignored", slog.String("type", string(event.Type)))
		return nil
	}
}

// completeCheckout marks the payment completed and unlocks premium. The
// user comes from the stored payment, falling back to the session's client
// reference when the payment row is missing.
func (service *Service) completeCheckout(context context.Context, session *stripe.CheckoutSession) error {
	userID := session.ClientReferenceID

	var paymentIntentID string
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}

	payment, err := service.repository.MarkCompleted(context, session.ID, paymentIntentID)
	switch {
	case err == nil:
		userID = payment.UserID
	case apperr.HasCode(err, apperr.CodeNotFound):
		service.logger.WarnContext(context, "billing_payment_unknown_session", slog.String("session_id", session.ID))
	default:
		return err
	}

	if userID == "" {
		return nil
	}

	if err := service.accounts.MarkPremium(context, userID, service.now()); err != nil {
		return fmt.Errorf("billing_mark_premium_failed: %w", err)
	}

	service.logger.InfoContext(context, "billing_premium_unlocked",
		slog.String("user_id", userID),
		slog.String("session_id", session.ID),
	)
	return nil
}

func (service *Service) failPayment(context context.Context, intent *stripe.PaymentIntent) error {
	err := service.repository.MarkFailed(context, intent.ID)
	switch {
	case err == nil:
		service.logger.InfoContext(context, "billing_payment_failed", slog.String("payment_intent_id", intent.ID))
	case apperr.HasCode(err, apperr.CodeNotFound):
		service.logger.InfoContext(context, "billing_payment_failed_unmatched", slog.String("payment_intent_id", intent.ID))
	default:
		return err
	}
	return nil
}

// Status returns the payment recorded for a checkout session.
func (service *Service) Status(context context.Context, sessionID string) (*Payment, error) {
	return service.repository.FindBySessionID(context, sessionID)
}
