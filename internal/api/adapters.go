package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kedr891/metal-rates-service/internal/domain"
	"github.com/kedr891/metal-rates-service/pkg/logger"
)

// RedisAdapter - адаптер клиента Redis под domain.CacheStorage
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (a *RedisAdapter) Get(ctx context.Context, key string) (string, error) {
	return a.client.Get(ctx, key).Result()
}

func (a *RedisAdapter) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return a.client.Set(ctx, key, value, ttl).Err()
}

func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	return a.client.Del(ctx, key).Err()
}

// DeleteByPattern - снять все ключи по маске через SCAN
func (a *RedisAdapter) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := a.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		_ = a.client.Del(ctx, iter.Val())
	}
	return iter.Err()
}

var _ domain.CacheStorage = (*RedisAdapter)(nil)

// LoggerAdapter - адаптер pkg/logger под domain.Logger
type LoggerAdapter struct {
	log *logger.Logger
}

func NewLoggerAdapter(log *logger.Logger) *LoggerAdapter {
	return &LoggerAdapter{log: log}
}

func (a *LoggerAdapter) Debug(msg string, args ...interface{}) { a.log.Debug(msg, args...) }
func (a *LoggerAdapter) Info(msg string, args ...interface{})  { a.log.Info(msg, args...) }
func (a *LoggerAdapter) Warn(msg string, args ...interface{})  { a.log.Warn(msg, args...) }
func (a *LoggerAdapter) Error(msg string, args ...interface{}) { a.log.Error(msg, args...) }
func (a *LoggerAdapter) Fatal(msg string, args ...interface{}) { a.log.Fatal(msg, args...) }

var _ domain.Logger = (*LoggerAdapter)(nil)
