package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard hands out per-session claims so that a payment session materializes
// at most one order even under concurrent confirmations. The claim is a
// redis SETNX lease with a TTL, so a crashed claim holder cannot poison the
// session forever. Durable at-most-once is still enforced by the unique
// session column on the orders table; the lease only keeps concurrent
// callers from running the same transactional work twice.
type Guard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGuard(rdb *redis.Client, ttl time.Duration) *Guard {
	return &Guard{rdb: rdb, ttl: ttl}
}

func (g *Guard) key(sessionID string) string {
	return fmt.Sprintf("checkout:claim:%s", sessionID)
}

// Claim atomically checks-and-marks materialization for the session as in
// progress. Exactly one concurrent caller gets true.
func (g *Guard) Claim(ctx context.Context, sessionID string) (bool, error) {
	return g.rdb.SetNX(ctx, g.key(sessionID), "1", g.ttl).Result()
}

// Release retracts the claim, either because materialization finished or
// because it failed and a later attempt should be allowed to proceed.
func (g *Guard) Release(ctx context.Context, sessionID string) error {
	return g.rdb.Del(ctx, g.key(sessionID)).Err()
}
