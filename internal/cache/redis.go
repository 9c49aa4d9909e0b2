package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), flightsTTL)
}

func NewRedisCacheWithClient(client *redis.Client, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetFlights returns nil, nil on a cache miss.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// AcquireBookingLock guards against the same user submitting two bookings
// for one flight at once.
func (c *RedisCache) AcquireBookingLock(ctx context.Context, flightID, userID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, bookingLockKey(flightID, userID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseBookingLock(ctx context.Context, flightID, userID int64) error {
	return c.client.Del(ctx, bookingLockKey(flightID, userID)).Err()
}

// SetSession stores value as JSON under key for ttl.
func (c *RedisCache) SetSession(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", key, err)
	}
	return c.client.Set(ctx, sessionKey(key), payload, ttl).Err()
}

// GetSession decodes the value under key into dest. It reports false when
// the key is missing or expired.
func (c *RedisCache) GetSession(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, sessionKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode session %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) DeleteSession(ctx context.Context, key string) error {
	return c.client.Del(ctx, sessionKey(key)).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func bookingLockKey(flightID, userID int64) string {
	return fmt.Sprintf("lock:flight:%d:user:%d", flightID, userID)
}

func sessionKey(key string) string {
	return "session:" + key
}
