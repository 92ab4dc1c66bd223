package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	loginAttemptBurst = 8
	// One failed attempt is forgiven every 30 seconds.
	loginAttemptRate = rate.Limit(1.0 / 30.0)
	limiterIdleTTL   = 30 * time.Minute
)

// attemptLimiter tracks failed attempts per key with a token bucket. Only
// failures consume tokens, so successful logins never lock anyone out.
type attemptLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	buckets  map[string]*limiterBucket
	lastSeen time.Time
}

type limiterBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newAttemptLimiter(limit rate.Limit, burst int) *attemptLimiter {
	return &attemptLimiter{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*limiterBucket),
	}
}

func (limiter *attemptLimiter) tooManyRecent(key string, now time.Time) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	bucket := limiter.bucketLocked(key, now)
	return bucket.limiter.TokensAt(now) < 1
}

func (limiter *attemptLimiter) addFailure(key string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	limiter.bucketLocked(key, now).limiter.AllowN(now, 1)
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.buckets, key)
}

func (limiter *attemptLimiter) bucketLocked(key string, now time.Time) *limiterBucket {
	limiter.pruneLocked(now)

	bucket, ok := limiter.buckets[key]
	if !ok {
		bucket = &limiterBucket{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.buckets[key] = bucket
	}
	bucket.lastSeen = now
	return bucket
}

func (limiter *attemptLimiter) pruneLocked(now time.Time) {
	if now.Sub(limiter.lastSeen) < time.Minute {
		return
	}
	limiter.lastSeen = now
	for key, bucket := range limiter.buckets {
		if now.Sub(bucket.lastSeen) > limiterIdleTTL {
			delete(limiter.buckets, key)
		}
	}
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
