package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-recruitment-workflow/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

type LoginTrackerConfig struct {
	MaxAttempts   int           // Failed attempts before block
	AttemptWindow time.Duration // Window the counter lives for
	BlockDuration time.Duration
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginTracker counts failed password logins per email and blocks the email
// once the threshold is reached. It fails open when Redis is absent.
type LoginTracker struct {
	config LoginTrackerConfig
	logger *AuditLogger
	client func() *goredis.Client
}

func NewLoginTracker(config LoginTrackerConfig) *LoginTracker {
	return &LoginTracker{
		config: config,
		logger: DefaultLogger(),
		client: redis.Client,
	}
}

const (
	failLoginPrefix    = "fail:login:user:"
	blockedLoginPrefix = "blocked:login:user:"
)

// Atomic increment with TTL on first set
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BlockedFor returns the remaining block time, zero when not blocked
func (lt *LoginTracker) BlockedFor(ctx context.Context, email string) (time.Duration, error) {
	client := lt.client()
	if client == nil {
		return 0, nil
	}
	ttl, err := client.TTL(ctx, blockedLoginPrefix+normalizeEmail(email)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check login block: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// RecordFailure counts a failed attempt and reports whether the email is now blocked
func (lt *LoginTracker) RecordFailure(ctx context.Context, email, ip, userAgent, requestID string) (bool, error) {
	lt.logger.LogLoginFailed(ctx, email, ip, userAgent, requestID, "invalid_credentials")

	client := lt.client()
	if client == nil {
		return false, nil
	}

	key := normalizeEmail(email)
	result, err := client.Eval(ctx, incrWithTTLScript, []string{failLoginPrefix + key}, int(lt.config.AttemptWindow.Seconds())).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count login failure: %w", err)
	}
	count, ok := result.(int64)
	if !ok {
		return false, errors.New("unexpected result type from Lua script")
	}

	if int(count) < lt.config.MaxAttempts {
		return false, nil
	}

	if err := client.Set(ctx, blockedLoginPrefix+key, "1", lt.config.BlockDuration).Err(); err != nil {
		return true, fmt.Errorf("failed to set login block: %w", err)
	}
	lt.logger.LogLoginBlocked(ctx, email, ip, requestID, int(lt.config.BlockDuration.Minutes()))
	return true, nil
}

// Clear resets the failure counter after a successful login
func (lt *LoginTracker) Clear(ctx context.Context, email string) error {
	client := lt.client()
	if client == nil {
		return nil
	}
	return client.Del(ctx, failLoginPrefix+normalizeEmail(email)).Err()
}
