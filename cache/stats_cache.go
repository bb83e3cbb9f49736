package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

// StatsKey 看板统计缓存键
const StatsKey = "crm:dashboard:stats"

// RedisStatsCache 基于Redis的看板统计缓存
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatsCache 根据 REDIS_URI 创建缓存
func NewRedisStatsCache(ctx context.Context, uri string, ttl time.Duration) (*RedisStatsCache, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("解析Redis地址失败: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	utils.Logger.Info().Str("addr", opts.Addr).Dur("ttl", ttl).Msg("已连接到Redis")
	return NewRedisStatsCacheWithClient(client, ttl), nil
}

// NewRedisStatsCacheWithClient 使用已有客户端
func NewRedisStatsCacheWithClient(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisStatsCache{client: client, ttl: ttl}
}

// Get 读取缓存，未命中返回false
func (c *RedisStatsCache) Get(ctx context.Context) (*models.DashboardStats, bool, error) {
	val, err := c.client.Get(ctx, StatsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var stats models.DashboardStats
	if err := json.Unmarshal(val, &stats); err != nil {
		return nil, false, fmt.Errorf("解析统计缓存失败: %w", err)
	}
	return &stats, true, nil
}

// Set 写入缓存
func (c *RedisStatsCache) Set(ctx context.Context, stats *models.DashboardStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, StatsKey, data, c.ttl).Err()
}

// Invalidate 清除缓存
func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, StatsKey).Err()
}

// Close 关闭连接
func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}
