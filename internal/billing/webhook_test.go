// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing_test

import (
	"encoding/hex"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/taibuivan/animetrack/internal/billing"
)

const webhookSecret = "whsec_test_secret"

// signAt signs payload the way Stripe does when delivering it at the given time.
func signAt(payload []byte, secret string, at time.Time) *webhook.SignedPayload {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
		Scheme:    "v1",
	})
}

func TestVerifyEvent(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	signedAt := time.Now()
	valid := signAt(payload, webhookSecret, signedAt)
	timestamp := strconv.FormatInt(signedAt.Unix(), 10)

	tests := []struct {
		name    string
		payload []byte
		header  string
		wantErr error
	}{
		{"valid", payload, valid.Header, nil},
		{"rotated_secret_second_signature", payload, "t=" + timestamp + ",v1=deadbeef,v1=" + hex.EncodeToString(valid.Signature), nil},
		{"missing_header", payload, "", webhook.ErrNotSigned},
		{"missing_v1", payload, "t=" + timestamp, webhook.ErrNotSigned},
		{"bad_timestamp", payload, "t=abc,v1=00", webhook.ErrInvalidHeader},
		{"tampered_payload", []byte(`{"id":"evt_2"}`), valid.Header, webhook.ErrNoValidSignature},
		{"wrong_secret", payload, signAt(payload, "whsec_other", signedAt).Header, webhook.ErrNoValidSignature},
		{"too_old", payload, signAt(payload, webhookSecret, signedAt.Add(-6*time.Minute)).Header, webhook.ErrTooOld},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := billing.VerifyEvent(tt.payload, tt.header, webhookSecret, 5*time.Minute)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "evt_1", event.ID)
			assert.Equal(t, billing.EventCheckoutCompleted, event.Type)
		})
	}
}
