// Package cache keeps raw model outputs in Redis so a repeated form
// submission skips the model call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/types"
)

const (
	keyPrefix  = "flightml:prediction:"
	defaultTTL = 5 * time.Minute
)

// ErrDecode is returned when a cached value cannot be parsed.
var ErrDecode = errors.New("decode cached prediction")

// Entry is the raw model output for one encoded vector.
type Entry struct {
	Class  int        `json:"class,omitempty"`
	Proba  [2]float64 `json:"proba,omitempty"`
	Amount float64    `json:"amount,omitempty"`
}

// kv is the part of the Redis client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisCache is a TTL cache of model outputs.
type RedisCache struct {
	client kv
	ttl    time.Duration
}

// Option configures a RedisCache.
type Option func(*RedisCache)

// WithTTL sets how long entries live; zero keeps the default.
func WithTTL(ttl time.Duration) Option {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRedisCache connects to the Redis server at addr.
func NewRedisCache(addr, password string, db int, opts ...Option) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return newRedisCache(client, opts...)
}

func newRedisCache(client kv, opts ...Option) *RedisCache {
	c := &RedisCache{client: client, ttl: defaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks the server is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the entry stored at key. A miss is (Entry{}, false, nil).
func (c *RedisCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return e, true, nil
}

// Set stores e at key with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, e Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Key derives the cache key for a vector scored by the model at modelURI.
// Switching models changes the key, so stale outputs are never served.
func Key(task types.Task, modelURI string, vector []float64) string {
	h := sha256.New()
	h.Write([]byte(modelURI))
	var buf [8]byte
	for _, v := range vector {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return keyPrefix + string(task) + ":" + hex.EncodeToString(h.Sum(nil))
}
