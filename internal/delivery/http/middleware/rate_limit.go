package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-recruitment-workflow/internal/delivery/http/response"
	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/redis"
	"go-recruitment-workflow/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig describes one fixed-window limit
type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
	// FailClosed rejects requests while Redis errors instead of counting in memory
	FailClosed bool
	KeyFunc    func(*gin.Context) string
}

func clientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// GlobalRateLimitConfig applies to every request
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:ip:", KeyFunc: clientIPKey}
}

// AuthRateLimitConfig guards login and registration
func AuthRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:auth:", FailClosed: true, KeyFunc: clientIPKey}
}

type windowCounter struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// memoryLimiter is the per-process fallback used while Redis is unavailable
type memoryLimiter struct {
	entries sync.Map
	once    sync.Once
}

func (m *memoryLimiter) hit(key string, window time.Duration, now time.Time) (int, time.Time) {
	m.once.Do(func() { go m.sweep(5 * time.Minute) })

	v, _ := m.entries.LoadOrStore(key, &windowCounter{resetAt: now.Add(window)})
	w := v.(*windowCounter)

	w.mu.Lock()
	defer w.mu.Unlock()
	if now.After(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(window)
	}
	w.count++
	return w.count, w.resetAt
}

func (m *memoryLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for now := range ticker.C {
		m.entries.Range(func(key, value any) bool {
			w := value.(*windowCounter)
			w.mu.Lock()
			if now.After(w.resetAt) {
				m.entries.Delete(key)
			}
			w.mu.Unlock()
			return true
		})
	}
}

// Returns {count, ttl}; the TTL is set on the first hit of a window
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

func hitRedis(ctx context.Context, client *goredis.Client, key string, window time.Duration) (int, time.Time, error) {
	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}
	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, errors.New("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

// RateLimit counts requests per key in Redis, falling back to process memory
// when Redis is not configured or (unless FailClosed) erroring.
func RateLimit(cfg RateLimitConfig, audit *security.AuditLogger) gin.HandlerFunc {
	fallback := &memoryLimiter{}

	return func(c *gin.Context) {
		key := cfg.KeyPrefix + cfg.KeyFunc(c)
		requestID := c.GetString(string(domain.KeyRequestID))

		var (
			count   int
			resetAt time.Time
		)
		client := redis.Client()
		if client == nil {
			count, resetAt = fallback.hit(key, cfg.Window, time.Now())
		} else {
			var err error
			count, resetAt, err = hitRedis(c.Request.Context(), client, key, cfg.Window)
			if err != nil {
				if cfg.FailClosed {
					audit.Log(c.Request.Context(), security.AuditEvent{
						Event:       security.EventRateLimitTriggered,
						SubjectType: "system",
						IP:          c.ClientIP(),
						RequestID:   requestID,
						Details:     map[string]any{"error_type": "redis_error", "error": err.Error()},
					})
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				count, resetAt = fallback.hit(key, cfg.Window, time.Now())
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > cfg.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			audit.LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.Request.UserAgent(), requestID, c.FullPath())

			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(cfg.Limit-count, 0)))
		c.Next()
	}
}
