package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/pkg/utils/json"
)

// AnswerCache caches successful answers. Implementations must treat a miss
// as (nil, nil).
type AnswerCache interface {
	Get(ctx context.Context, req *AnswerRequest) (*model.Answer, error)
	Set(ctx context.Context, req *AnswerRequest, answer *model.Answer) error
	// Clear drops every cached answer, e.g. after the knowledge base changed.
	Clear(ctx context.Context) error
	// ClearEmployee drops the answers personalized for one employee.
	ClearEmployee(ctx context.Context, employeeID string) error
}

// NoopCache never stores anything.
type NoopCache struct{}

// Get implements AnswerCache.
func (NoopCache) Get(context.Context, *AnswerRequest) (*model.Answer, error) { return nil, nil }

// Set implements AnswerCache.
func (NoopCache) Set(context.Context, *AnswerRequest, *model.Answer) error { return nil }

// Clear implements AnswerCache.
func (NoopCache) Clear(context.Context) error { return nil }

// ClearEmployee implements AnswerCache.
func (NoopCache) ClearEmployee(context.Context, string) error { return nil }

// AnswerCacheConfig 问答缓存配置。
type AnswerCacheConfig struct {
	// TTL 缓存过期时间。
	TTL time.Duration
	// KeyPrefix 缓存键前缀。
	KeyPrefix string
}

// RedisAnswerCache 基于 Redis 的问答缓存。
type RedisAnswerCache struct {
	redis  *goredis.Client
	config *AnswerCacheConfig
}

var _ AnswerCache = (*RedisAnswerCache)(nil)

// NewRedisAnswerCache 创建问答缓存实例。
func NewRedisAnswerCache(redis *goredis.Client, config *AnswerCacheConfig) *RedisAnswerCache {
	if config == nil {
		config = &AnswerCacheConfig{
			TTL:       1 * time.Hour,
			KeyPrefix: "onboarding:answer:",
		}
	}
	return &RedisAnswerCache{
		redis:  redis,
		config: config,
	}
}

// cacheKey 基于问题、过滤条件与员工生成缓存键（SHA256）。
// 个性化答案的键带有员工段，便于按员工失效。
func (c *RedisAnswerCache) cacheKey(req *AnswerRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Question))
	h.Write([]byte{0})
	h.Write([]byte(req.Filter.SourceDocumentID))
	h.Write([]byte{0})
	h.Write([]byte(req.EmployeeID))
	sum := hex.EncodeToString(h.Sum(nil))
	if req.EmployeeID == "" {
		return c.config.KeyPrefix + sum
	}
	return c.employeePrefix(req.EmployeeID) + sum
}

func (c *RedisAnswerCache) employeePrefix(employeeID string) string {
	return c.config.KeyPrefix + "emp:" + hex.EncodeToString([]byte(employeeID)) + ":"
}

// Get 从缓存获取答案，未命中返回 nil, nil。
func (c *RedisAnswerCache) Get(ctx context.Context, req *AnswerRequest) (*model.Answer, error) {
	key := c.cacheKey(req)

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			logger.Debugw("answer cache miss", "key", key)
			return nil, nil
		}
		logger.Warnw("failed to get from answer cache", "error", err.Error(), "key", key)
		return nil, err
	}

	var answer model.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		logger.Warnw("failed to unmarshal cached answer", "error", err.Error(), "key", key)
		// 删除损坏的缓存
		_ = c.redis.Del(ctx, key).Err()
		return nil, err
	}

	logger.Debugw("answer cache hit", "key", key)
	return &answer, nil
}

// Set 写入答案。
func (c *RedisAnswerCache) Set(ctx context.Context, req *AnswerRequest, answer *model.Answer) error {
	key := c.cacheKey(req)

	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		logger.Warnw("failed to set answer cache", "error", err.Error(), "key", key)
		return err
	}
	return nil
}

// Clear 使用 SCAN 删除所有带前缀的键。
func (c *RedisAnswerCache) Clear(ctx context.Context) error {
	return c.deleteMatching(ctx, c.config.KeyPrefix+"*")
}

// ClearEmployee 删除某员工的个性化答案。
func (c *RedisAnswerCache) ClearEmployee(ctx context.Context, employeeID string) error {
	return c.deleteMatching(ctx, c.employeePrefix(employeeID)+"*")
}

func (c *RedisAnswerCache) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()

	deleted := 0
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete cache key", "error", err.Error(), "key", iter.Val())
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if deleted > 0 {
		logger.Infow("cleared answer cache", "pattern", pattern, "deleted_count", deleted)
	}
	return nil
}
