package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisStatsCacheWithClient_DefaultTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	assert.Equal(t, 30*time.Second, NewRedisStatsCacheWithClient(client, 0).ttl)
	assert.Equal(t, time.Minute, NewRedisStatsCacheWithClient(client, time.Minute).ttl)
}

func TestNewRedisStatsCache_BadURI(t *testing.T) {
	_, err := NewRedisStatsCache(context.Background(), "not-a-redis-uri", time.Minute)
	assert.Error(t, err)
}
