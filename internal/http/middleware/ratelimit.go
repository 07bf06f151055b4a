package middleware

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/tangerinesoft/photo-service/internal/config"
	"github.com/tangerinesoft/photo-service/internal/ratelimit"
	"github.com/tangerinesoft/photo-service/internal/utils/response"
)

const (
	ActionLogin  = "login"
	ActionUpload = "upload"
	ActionVisit  = "visit"
)

type RateLimitConfig struct {
	limiters map[string]*ratelimit.TokenBucket
}

func NewRateLimitConfig(redisClient *redis.Client, cfg config.RateLimit) *RateLimitConfig {
	return &RateLimitConfig{
		limiters: map[string]*ratelimit.TokenBucket{
			ActionLogin:  ratelimit.NewTokenBucket(redisClient, cfg.LoginPerMinute, cfg.LoginPerMinute),
			ActionUpload: ratelimit.NewTokenBucket(redisClient, cfg.UploadPerMinute, cfg.UploadPerMinute),
			ActionVisit:  ratelimit.NewTokenBucket(redisClient, cfg.VisitPerMinute, cfg.VisitPerMinute),
		},
	}
}

// RateLimitMiddleware limits action per authenticated subject, falling back
// to the client IP for anonymous requests. Redis failures let the request
// through.
func (rlc *RateLimitConfig) RateLimitMiddleware(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limiter, exists := rlc.limiters[action]
		if !exists {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := GetSubjectFromContext(r.Context())
			if !ok {
				subject = clientIP(r)
			}

			allowed, remaining, err := limiter.Take(r.Context(), subject, action)
			if err != nil {
				slog.Warn("Rate limit check failed", slog.String("action", action), slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limiter.Limit(), 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(limiter.Window().Seconds())))

			if !allowed {
				response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(
					errors.New("rate limit exceeded")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitedHandler wraps a handler with rate limiting for a specific action
func (rlc *RateLimitConfig) RateLimitedHandler(action string, handler http.HandlerFunc) http.Handler {
	return rlc.RateLimitMiddleware(action)(handler)
}

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
