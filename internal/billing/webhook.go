// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Stripe event types handled by the webhook.
const (
	EventCheckoutCompleted stripe.EventType = "checkout.session.completed"
	EventPaymentFailed     stripe.EventType = "payment_intent.payment_failed"
)

var errMissingObject = errors.New("billing: event has no data.object")

/*
VerifyEvent checks a Stripe-Signature header against the raw payload and
decodes the event it signs.

Any matching v1 signature is accepted, which covers secret rotation. The
event's API version is not compared with the library's: only the id, type
and data.object are read.

Returns:
  - stripe.Event: The decoded delivery
  - error: a webhook.Err* sentinel for a bad signature, a decode error otherwise
*/
func VerifyEvent(payload []byte, header, secret string, tolerance time.Duration) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: true,
	})
}

// isSignatureError reports whether err came from signature checking rather
// than from decoding the payload.
func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

// decodeObject unmarshals data.object of event into target.
func decodeObject(event stripe.Event, target any) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return errMissingObject
	}
	return json.Unmarshal(event.Data.Raw, target)
}
