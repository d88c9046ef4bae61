package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCooldown = time.Minute

// ResendThrottle enforces a cooldown between verification emails of one
// account. Key format: verification:resend:<account_id>
type ResendThrottle struct {
	client   *redis.Client
	cooldown time.Duration
}

// NewResendThrottle wraps client. A non-positive cooldown falls back to one minute.
func NewResendThrottle(client *redis.Client, cooldown time.Duration) *ResendThrottle {
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &ResendThrottle{client: client, cooldown: cooldown}
}

// Allow claims the cooldown slot with SET NX. It returns false while a
// previous claim has not expired.
func (t *ResendThrottle) Allow(ctx context.Context, accountID int64) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(accountID), "1", t.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("resend throttle: %w", err)
	}
	return ok, nil
}

func (t *ResendThrottle) key(accountID int64) string {
	return fmt.Sprintf("verification:resend:%d", accountID)
}
