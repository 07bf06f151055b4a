package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// takeScript refills the bucket for the elapsed time and consumes one token.
// It returns {allowed, tokens_left}.
var takeScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refill_rate = tonumber(ARGV[2])
	local window = tonumber(ARGV[3])
	local now = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local tokens = tonumber(bucket[1]) or capacity
	local last_refill = tonumber(bucket[2]) or now

	local refill = math.floor(((now - last_refill) / window) * refill_rate)
	if refill > 0 then
		tokens = math.min(capacity, tokens + refill)
		last_refill = now
	end

	local allowed = 0
	if tokens > 0 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill', last_refill)
	redis.call('EXPIRE', key, window * 2)
	return {allowed, tokens}
`)

// peekScript reports the tokens available without consuming any.
var peekScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refill_rate = tonumber(ARGV[2])
	local window = tonumber(ARGV[3])
	local now = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local tokens = tonumber(bucket[1]) or capacity
	local last_refill = tonumber(bucket[2]) or now

	local refill = math.floor(((now - last_refill) / window) * refill_rate)
	if refill > 0 then
		tokens = math.min(capacity, tokens + refill)
	end
	return tokens
`)

// TokenBucket is a Redis-backed token bucket shared by every API replica.
// Buckets are keyed by subject (an admin username or a client IP) and action.
type TokenBucket struct {
	redis    *redis.Client
	capacity int64
	refill   int64
	window   time.Duration
	now      func() time.Time
}

// NewTokenBucket allows capacity requests in a burst and refills refillRate
// tokens per minute.
func NewTokenBucket(redisClient *redis.Client, capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		redis:    redisClient,
		capacity: capacity,
		refill:   refillRate,
		window:   time.Minute,
		now:      time.Now,
	}
}

func (tb *TokenBucket) Limit() int64 {
	return tb.capacity
}

func (tb *TokenBucket) Window() time.Duration {
	return tb.window
}

func key(subject, action string) string {
	return fmt.Sprintf("rate_limit:%s:%s", action, subject)
}

func (tb *TokenBucket) args() []any {
	return []any{tb.capacity, tb.refill, int64(tb.window.Seconds()), tb.now().Unix()}
}

// Take consumes one token. It reports whether the request is allowed and
// how many tokens remain.
func (tb *TokenBucket) Take(ctx context.Context, subject, action string) (bool, int64, error) {
	res, err := takeScript.Run(ctx, tb.redis, []string{key(subject, action)}, tb.args()...).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit result %v", res)
	}
	return res[0] == 1, res[1], nil
}

// Allow consumes one token and reports whether the request may proceed.
func (tb *TokenBucket) Allow(ctx context.Context, subject, action string) (bool, error) {
	allowed, _, err := tb.Take(ctx, subject, action)
	return allowed, err
}

func (tb *TokenBucket) GetRemaining(ctx context.Context, subject, action string) (int64, error) {
	n, err := peekScript.Run(ctx, tb.redis, []string{key(subject, action)}, tb.args()...).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to get remaining tokens: %w", err)
	}
	return n, nil
}

func (tb *TokenBucket) Reset(ctx context.Context, subject, action string) error {
	return tb.redis.Del(ctx, key(subject, action)).Err()
}
