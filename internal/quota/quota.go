// Package quota caps the number of questions a guest user may ask per
// calendar day, backed by a shared Redis counter.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sro-assistant/internal/model"
)

const keyTTL = 86400 * time.Second

// Tracker enforces the daily question limit. Only guests are limited; any
// other role passes through without touching the counter.
type Tracker struct {
	client *redis.Client
	limit  int64
	log    *zap.Logger
}

func NewTracker(client *redis.Client, dailyLimit int, log *zap.Logger) *Tracker {
	if dailyLimit <= 0 {
		dailyLimit = 3
	}
	return &Tracker{
		client: client,
		limit:  int64(dailyLimit),
		log:    log,
	}
}

// CheckAndConsume atomically increments the user's counter for today and
// reports whether the question is allowed. An increment that crosses the
// limit is rolled back so the stored count stays bounded at the limit.
// The increment and the rollback are separate commands, so concurrent
// requests can transiently overshoot the limit; that soft behavior is
// accepted. If Redis is unreachable the tracker fails open.
func (t *Tracker) CheckAndConsume(ctx context.Context, userID int64, role string) bool {
	if role != model.RoleGuest {
		return true
	}

	key := t.key(userID, time.Now().UTC())
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		t.log.Warn("quota counter unavailable, failing open", zap.Error(err))
		return true
	}

	if count == 1 {
		// First question today; the key self-clears after one day.
		if err := t.client.Expire(ctx, key, keyTTL).Err(); err != nil {
			t.log.Warn("quota key expire failed", zap.String("key", key), zap.Error(err))
		}
	}

	if count > t.limit {
		if err := t.client.Decr(ctx, key).Err(); err != nil {
			t.log.Warn("quota rollback failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

func (t *Tracker) key(userID int64, now time.Time) string {
	return fmt.Sprintf("questions:%d:%s", userID, now.Format("2006-01-02"))
}
