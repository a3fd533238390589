// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/taibuivan/animetrack/internal/billing"
)

const (
	stripeURL    = "https://stripe.test"
	sessionsPath = stripeURL + "/v1/checkout/sessions"
)

func checkoutRequest() billing.CheckoutRequest {
	return billing.CheckoutRequest{
		UserID:      "0190a7c4-0000-7000-8000-000000000001",
		Username:    "kaito",
		Amount:      499,
		Currency:    "eur",
		ProductType: "premium_themes",
		SuccessURL:  "http://localhost:3000/profile?payment=success",
		CancelURL:   "http://localhost:3000/profile?payment=cancelled",
	}
}

func newStripeClient(transport http.RoundTripper) *billing.StripeClient {
	return billing.NewStripeClient(stripeURL, "sk_test_123", &http.Client{Transport: transport}, slog.New(slog.DiscardHandler))
}

func TestStripeClient_CreateSession(t *testing.T) {
	transport := httpmock.NewMockTransport()
	client := newStripeClient(transport)

	transport.RegisterResponder(http.MethodPost, sessionsPath,
		func(request *http.Request) (*http.Response, error) {
			if request.Header.Get("Authorization") != "Bearer sk_test_123" {
				return httpmock.NewStringResponse(http.StatusUnauthorized, `{"error":{"type":"invalid_request_error","message":"bad key"}}`), nil
			}
			if err := request.ParseForm(); err != nil {
				return nil, err
			}
			form := request.PostForm
			if form.Get("mode") != "payment" ||
				form.Get("line_items[0][price_data][unit_amount]") != "499" ||
				form.Get("line_items[0][price_data][currency]") != "eur" ||
				form.Get("client_reference_id") != "0190a7c4-0000-7000-8000-000000000001" ||
				form.Get("metadata[username]") != "kaito" {
				return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":{"type":"invalid_request_error","message":"unexpected form"}}`), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.test/cs_test_1"}`), nil
		})

	session, err := client.CreateSession(context.Background(), checkoutRequest())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.SessionID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", session.URL)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestStripeClient_Errors(t *testing.T) {
	transport := httpmock.NewMockTransport()
	client := newStripeClient(transport)

	transport.RegisterResponder(http.MethodPost, sessionsPath,
		httpmock.NewStringResponder(http.StatusPaymentRequired, `{"error":{"type":"card_error","message":"declined"}}`))

	_, err := client.CreateSession(context.Background(), checkoutRequest())
	require.Error(t, err)

	var stripeErr *stripe.Error
	require.True(t, errors.As(err, &stripeErr))
	assert.Equal(t, http.StatusPaymentRequired, stripeErr.HTTPStatusCode)
	assert.Equal(t, "declined", stripeErr.Msg)

	transport.RegisterResponder(http.MethodPost, sessionsPath,
		httpmock.NewStringResponder(http.StatusOK, `{"id":""}`))
	_, err = client.CreateSession(context.Background(), checkoutRequest())
	assert.Error(t, err)
}
