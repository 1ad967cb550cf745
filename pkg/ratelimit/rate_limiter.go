package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"seatly/internal/shared/config"
	"seatly/pkg/logger"
)

// LimitType selects which request budget applies to a route group.
type LimitType string

const (
	LimitDefault LimitType = "default"
	LimitPublic  LimitType = "public"
	LimitAuth    LimitType = "auth"
	LimitBooking LimitType = "booking"
	LimitAdmin   LimitType = "admin"
)

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// slidingWindow is evaluated atomically in Redis: drop expired entries,
// count the window, and admit by adding the new request timestamp.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count < limit then
    redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
    redis.call('PEXPIRE', key, window)
    return {1, limit - count - 1}
end
return {0, 0}
`)

type Limiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
	log    *logger.Logger
}

func NewLimiter(client *redis.Client, cfg config.RateLimitConfig, log *logger.Logger) *Limiter {
	return &Limiter{client: client, cfg: cfg, log: log}
}

func (l *Limiter) limitFor(t LimitType) int {
	switch t {
	case LimitPublic:
		return l.cfg.PublicRequests
	case LimitAuth:
		return l.cfg.AuthRequests
	case LimitBooking:
		return l.cfg.BookingRequests
	case LimitAdmin:
		return l.cfg.AdminRequests
	default:
		return l.cfg.DefaultRequests
	}
}

func (l *Limiter) isWhitelisted(ip string) bool {
	for _, allowed := range l.cfg.WhitelistedIPs {
		if ip == allowed {
			return true
		}
	}
	return false
}

// Allow checks whether identity may make another request of the given type.
// On Redis failure the request is admitted; availability wins over strictness.
func (l *Limiter) Allow(ctx context.Context, identity string, t LimitType) Result {
	limit := l.limitFor(t)
	if !l.cfg.Enabled || limit <= 0 || l.isWhitelisted(identity) {
		return Result{Allowed: true, Limit: limit, Remaining: limit}
	}

	key := fmt.Sprintf("seatly:ratelimit:%s:%s", t, identity)
	now := time.Now().UnixMilli()
	window := l.cfg.WindowDuration.Milliseconds()

	raw, err := slidingWindow.Run(ctx, l.client, []string{key}, now, window, limit).Slice()
	if err != nil {
		l.log.Warn("rate limiter unavailable, admitting request", "error", err)
		return Result{Allowed: true, Limit: limit, Remaining: limit}
	}

	allowed, _ := raw[0].(int64)
	remaining, _ := raw[1].(int64)
	return Result{
		Allowed:    allowed == 1,
		Limit:      limit,
		Remaining:  int(remaining),
		ResetAfter: l.cfg.WindowDuration,
	}
}
