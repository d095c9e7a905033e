// Package ratelimit 实现基于 Redis 的令牌桶限流。
//
// 桶状态存在 Redis 里，多实例共享同一个桶；补充与扣减在一段 Lua 脚本里
// 原子完成。
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenBucketLua = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

if rate <= 0 or burst <= 0 then
  return {1, burst}
end

local data = redis.call("HMGET", key, "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])
if tokens == nil then
  tokens = burst
end
if ts == nil then
  ts = now
end

local delta = math.max(0, now - ts)
local refill = (delta * rate) / 1000.0
tokens = math.min(burst, tokens + refill)

local allowed = tokens >= requested
if allowed then
  tokens = tokens - requested
end

redis.call("HMSET", key, "tokens", tokens, "ts", now)
redis.call("PEXPIRE", key, math.ceil((burst / rate) * 1000.0 * 2))

return {allowed and 1 or 0, tokens}
`

// Limiter 是以 Redis 为后端的令牌桶。
type Limiter struct {
	rdb    *redis.Client
	key    string
	rate   float64
	burst  float64
	logger *slog.Logger
	script *redis.Script
}

// New 创建限流器。rate 为每秒补充的令牌数，burst 为桶容量。
func New(rdb *redis.Client, logger *slog.Logger, key string, rate float64, burst float64) *Limiter {
	if key == "" {
		key = "curiohub:ratelimit:default"
	}
	return &Limiter{
		rdb:    rdb,
		key:    key,
		rate:   rate,
		burst:  burst,
		logger: logger,
		script: redis.NewScript(tokenBucketLua),
	}
}

// Allow 尝试立即取一个令牌，不等待。HTTP 层用它直接回 429。
// rate 或 burst 为零时限流关闭，始终放行。
func (l *Limiter) Allow(ctx context.Context) (bool, error) {
	if l == nil || l.rate <= 0 || l.burst <= 0 {
		return true, nil
	}

	now := time.Now().UnixMilli()
	res, err := l.script.Run(ctx, l.rdb, []string{l.key}, l.rate, l.burst, now, 1).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit eval: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) < 1 {
		return false, fmt.Errorf("ratelimit invalid result")
	}
	return toInt64(values[0]) == 1, nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if t == "" {
			return 0
		}
		if parsed, err := strconv.ParseInt(t, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
