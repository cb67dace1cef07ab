package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// PaymentEventRepository remembers processed webhook event ids so redelivered
// callbacks from the payment provider are acknowledged without re-applying
// their effects.
type PaymentEventRepository struct {
	RDB *redis.Client
	TTL time.Duration
}

const paymentEventKeyPrefix = "stripe:event:"

// MarkProcessed records the event id and reports whether this is the first
// delivery. A second call with the same id returns false.
func (r *PaymentEventRepository) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	ttl := r.TTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return r.RDB.SetNX(ctx, paymentEventKeyPrefix+eventID, 1, ttl).Result()
}

// ClearProcessed forgets an event id, letting the provider's retry of a
// failed apply go through.
func (r *PaymentEventRepository) ClearProcessed(ctx context.Context, eventID string) error {
	return r.RDB.Del(ctx, paymentEventKeyPrefix+eventID).Err()
}
