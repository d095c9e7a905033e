// Package dedup 缓存已上传内容的哈希，避免同一份字节被重复推到媒体存储。
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sumPrefix = "curiohub:media:sha256:" // 内容哈希 -> 公开 URL
	objPrefix = "curiohub:media:key:"    // 对象键 -> 内容哈希（删除时反查用）
)

// Deduplicator 以内容哈希为键，在 Redis 里缓存已上传对象的访问 URL。
type Deduplicator struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDeduplicator 创建去重缓存。ttl 非正时使用 24h。
func NewDeduplicator(rdb *redis.Client, ttl time.Duration) *Deduplicator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Deduplicator{
		rdb: rdb,
		ttl: ttl,
	}
}

// HashContent 返回内容的 SHA-256（hex）。
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Lookup 查询哈希对应的已上传 URL。缓存未命中返回空串。
func (d *Deduplicator) Lookup(ctx context.Context, sum string) (string, error) {
	if d == nil || d.rdb == nil || sum == "" {
		return "", nil
	}
	url, err := d.rdb.Get(ctx, sumPrefix+sum).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("dedup get: %w", err)
	}
	return url, nil
}

// Remember 记录哈希到 URL 的映射，同时记录对象键到哈希的反向索引，
// 对象被删除时才能找到要失效的缓存条目。
func (d *Deduplicator) Remember(ctx context.Context, sum string, url string, key string) error {
	if d == nil || d.rdb == nil || sum == "" || url == "" {
		return nil
	}
	if err := d.rdb.Set(ctx, sumPrefix+sum, url, d.ttl).Err(); err != nil {
		return fmt.Errorf("dedup set: %w", err)
	}
	if key != "" {
		if err := d.rdb.Set(ctx, objPrefix+key, sum, d.ttl).Err(); err != nil {
			return fmt.Errorf("dedup set key index: %w", err)
		}
	}
	return nil
}

// ForgetKey 在对象被删除后失效其缓存：通过反向索引找到内容哈希，
// 把哈希条目和索引一起删掉。索引不存在时什么都不做。
func (d *Deduplicator) ForgetKey(ctx context.Context, key string) error {
	if d == nil || d.rdb == nil || key == "" {
		return nil
	}
	sum, err := d.rdb.Get(ctx, objPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dedup key index get: %w", err)
	}
	if err := d.rdb.Del(ctx, sumPrefix+sum, objPrefix+key).Err(); err != nil {
		return fmt.Errorf("dedup del: %w", err)
	}
	return nil
}
