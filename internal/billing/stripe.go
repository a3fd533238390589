// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

const (
	stripeTimeout = 15 * time.Second

	productName        = "Premium Themes Pack"
	productDescription = "Unlock 20 exclusive themes forever"
)

// StripeClient implements [CheckoutProvider] on stripe-go's Checkout
// Sessions client. It carries its own key and backend instead of the
// package-level stripe.Key.
type StripeClient struct {
	sessions session.Client
}

/*
NewStripeClient creates a client against baseURL (https://api.stripe.com in
production).

Parameters:
  - baseURL: string
  - secretKey: string
  - httpClient: *http.Client (nil uses a dedicated client with a timeout)
  - logger: *slog.Logger (receives stripe-go diagnostics)
*/
func NewStripeClient(baseURL, secretKey string, httpClient *http.Client, logger *slog.Logger) *StripeClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: stripeTimeout}
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:    httpClient,
		URL:           stripe.String(baseURL),
		LeveledLogger: stripeLogger{logger: logger},
	})

	return &StripeClient{sessions: session.Client{B: backend, Key: secretKey}}
}

// CreateSession opens a one-item payment-mode Checkout Session.
func (client *StripeClient) CreateSession(context context.Context, checkout CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(checkout.Currency),
				UnitAmount: stripe.Int64(int64(checkout.Amount)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(productName),
					Description: stripe.String(productDescription),
				},
			},
		}},
		SuccessURL:        stripe.String(checkout.SuccessURL),
		CancelURL:         stripe.String(checkout.CancelURL),
		ClientReferenceID: stripe.String(checkout.UserID),
	}
	params.Context = context
	params.AddMetadata("user_id", checkout.UserID)
	params.AddMetadata("username", checkout.Username)
	params.AddMetadata("product_type", checkout.ProductType)

	created, err := client.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create session: %w", err)
	}
	if created.ID == "" || created.URL == "" {
		return nil, fmt.Errorf("stripe create session: incomplete response")
	}

	return &CheckoutSession{SessionID: created.ID, URL: created.URL}, nil
}

// stripeLogger routes stripe-go's leveled logging into slog.
type stripeLogger struct {
	logger *slog.Logger
}

func (l stripeLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug("stripe_client", slog.String("message", fmt.Sprintf(format, v...)))
}

func (l stripeLogger) Infof(format string, v ...interface{}) {
	l.logger.Info("stripe_client", slog.String("message", fmt.Sprintf(format, v...)))
}

func (l stripeLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn("stripe_client", slog.String("message", fmt.Sprintf(format, v...)))
}

func (l stripeLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error("stripe_client", slog.String("message", fmt.Sprintf(format, v...)))
}
