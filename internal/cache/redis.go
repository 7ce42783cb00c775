package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/takore/linkcut/internal/model"
)

// Cache хранит горячие редиректы (short_code -> CacheEntry) в Redis.
// Это строго производный кэш: источником истины остаётся БД, при любой
// мутации ссылки запись инвалидируется.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// ConnectRedis подключается к Redis и проверяет соединение.
func ConnectRedis(addr, password string, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Get возвращает запись кэша по коду, либо (nil, nil) при промахе.
func (c *Cache) Get(ctx context.Context, code string) (*model.CacheEntry, error) {
	data, err := c.rdb.Get(ctx, code).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	entry := &model.CacheEntry{}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Set сохраняет запись кэша с настроенным TTL.
func (c *Cache) Set(ctx context.Context, code string, entry *model.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, code, data, c.ttl).Err()
}

// Invalidate удаляет записи по кодам.
func (c *Cache) Invalidate(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, codes...).Err()
}

// Close закрывает соединение с Redis.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
