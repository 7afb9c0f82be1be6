package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis key-value backend.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"` // 0 keeps records forever
}

// redisKVClient is the subset of *redis.Client the backend uses.
type redisKVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisKeyValueBackend stores records under <prefix>:<store>:<key>.
type RedisKeyValueBackend struct {
	client redisKVClient
	prefix string
	ttl    time.Duration
}

// NewRedisKeyValueBackend connects to Redis and verifies the connection.
func NewRedisKeyValueBackend(cfg RedisConfig) (*RedisKeyValueBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisKeyValueBackend(client, cfg.Prefix, cfg.TTL), nil
}

func newRedisKeyValueBackend(client redisKVClient, prefix string, ttl time.Duration) *RedisKeyValueBackend {
	if prefix == "" {
		prefix = "people-search"
	}
	return &RedisKeyValueBackend{client: client, prefix: prefix, ttl: ttl}
}

// BuildKey creates the Redis key for a record.
func (b *RedisKeyValueBackend) BuildKey(storeID, key string) string {
	return fmt.Sprintf("%s:%s:%s", b.prefix, storeID, key)
}

func (b *RedisKeyValueBackend) Store(storeID string) KeyValueStore {
	return &redisKV{backend: b, storeID: storeID}
}

func (b *RedisKeyValueBackend) Close() error {
	return b.client.Close()
}

type redisKV struct {
	backend *RedisKeyValueBackend
	storeID string
}

func (s *redisKV) SetValue(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := s.backend.client.Set(ctx, s.backend.BuildKey(s.storeID, key), data, s.backend.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (s *redisKV) GetValue(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := s.backend.client.Get(ctx, s.backend.BuildKey(s.storeID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return data, nil
}
