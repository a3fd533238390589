// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/animetrack/internal/platform/constants"
)

// RedisLedger implements [EventLedger] with SETNX keys that expire after
// [constants.WebhookEventTTL].
type RedisLedger struct {
	client redis.UniversalClient
}

// NewRedisLedger wraps a Redis client.
func NewRedisLedger(client redis.UniversalClient) *RedisLedger {
	return &RedisLedger{client: client}
}

// FirstSeen claims the event id.
func (ledger *RedisLedger) FirstSeen(context context.Context, eventID string) (bool, error) {
	return ledger.client.SetNX(context, constants.RedisPrefixBillingEvent+eventID, 1, constants.WebhookEventTTL).Result()
}

// Forget releases the event id.
func (ledger *RedisLedger) Forget(context context.Context, eventID string) error {
	return ledger.client.Del(context, constants.RedisPrefixBillingEvent+eventID).Err()
}
