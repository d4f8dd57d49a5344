package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the redis-backed lock store.
type RedisOptions struct {
	// Addr is the address of the redis server.
	Addr string

	// Password is the optional password of the redis server.
	Password string

	// DB is the redis database to use.
	DB int

	// KeyPrefix is prepended to every lock key. Defaults to "antireplay:".
	KeyPrefix string

	// DialTimeout is the max duration to dial a new connection.
	DialTimeout time.Duration

	// ReadTimeout for redis socket reads.
	ReadTimeout time.Duration

	// WriteTimeout for redis socket writes.
	WriteTimeout time.Duration
}

const defaultKeyPrefix = "antireplay:"

// RedisStore is a Store backed by a redis server. Acquire maps to a single
// SET NX PX command, so the set-if-absent check is atomic across all
// instances sharing the server.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	owned     bool
}

// NewRedisStore creates a redis-backed lock store from the given options.
func NewRedisStore(opts *RedisOptions) *RedisStore {
	if opts == nil {
		opts = &RedisOptions{}
	}
	keyPrefix := opts.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})
	return &RedisStore{client: client, keyPrefix: keyPrefix, owned: true}
}

// NewRedisStoreWithClient wraps an existing redis client. The caller keeps
// ownership of the client; Close becomes a no-op.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

// Acquire issues SET NX with the TTL as expiry.
func (s *RedisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
}

// Release deletes the key.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.keyPrefix+key).Err()
}

// Ping checks connectivity to the redis server.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying redis client when the store created it.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
