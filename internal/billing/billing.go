// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package billing sells the one-off premium themes pack through Stripe Checkout.

Flow:

 1. The client asks for a checkout session and is redirected to Stripe.
 2. A pending [Payment] is recorded under the Stripe session id.
 3. Stripe calls the webhook; a verified checkout.session.completed event
    completes the payment and unlocks premium on the account.

Webhook deliveries are at-least-once, so every handler is idempotent and
event ids are de-duplicated for a day.
*/
package billing

import (
	"context"
	"time"
)

// # Domain Entities

// PaymentStatus is the lifecycle state of a [Payment].
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment is one checkout attempt.
type Payment struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Username        string        `json:"username"`
	SessionID       string        `json:"session_id"`
	PaymentIntentID string        `json:"payment_intent_id"`
	Amount          int           `json:"amount"`
	Currency        string        `json:"currency"`
	Status          PaymentStatus `json:"status"`
	ProductType     string        `json:"product_type"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CheckoutRequest describes the session to open with the payment provider.
type CheckoutRequest struct {
	UserID      string
	Username    string
	Amount      int
	Currency    string
	ProductType string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the provider's answer: where to send the user.
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// # Contracts

// Repository defines the persistence contract for payments.
type Repository interface {
	Create(context context.Context, payment *Payment) error

	// FindBySessionID returns apperr.NotFound for an unknown session.
	FindBySessionID(context context.Context, sessionID string) (*Payment, error)

	// MarkCompleted completes the payment of a session and records the
	// payment intent. Completing twice is a no-op.
	MarkCompleted(context context.Context, sessionID, paymentIntentID string) (*Payment, error)

	// MarkFailed fails the pending payment carrying paymentIntentID.
	MarkFailed(context context.Context, paymentIntentID string) error
}

// CheckoutProvider opens hosted checkout sessions.
type CheckoutProvider interface {
	CreateSession(context context.Context, request CheckoutRequest) (*CheckoutSession, error)
}

// EventLedger remembers processed webhook event ids.
type EventLedger interface {
	// FirstSeen records eventID and reports whether it was new.
	FirstSeen(context context.Context, eventID string) (bool, error)
	// Forget drops eventID so a redelivery is processed again.
	Forget(context context.Context, eventID string) error
}
