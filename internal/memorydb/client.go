package memorydb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"prodimport/internal/config"
)

// RedisClient holds progress snapshots shared between console and CLI processes.
type RedisClient struct {
	client redis.UniversalClient
}

// NewRedisClient connects to cfg.URL and pings it. URL is either a plain
// host:port (comma separated for a cluster) or a redis:// / rediss:// URL.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	opts, err := universalOptions(cfg)
	if err != nil {
		return nil, err
	}

	// UniversalClient works with both standalone and cluster Redis
	client := redis.NewUniversalClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisClient{client: client}, nil
}

func universalOptions(cfg config.RedisConfig) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{
		Username:     cfg.Username,
		Password:     cfg.Password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
	}

	if !strings.Contains(cfg.URL, "://") {
		for _, addr := range strings.Split(cfg.URL, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				opts.Addrs = append(opts.Addrs, addr)
			}
		}
		if len(opts.Addrs) == 0 {
			return nil, errors.New("redis address is empty")
		}
		return opts, nil
	}

	parsed, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.DB = parsed.DB
	opts.TLSConfig = parsed.TLSConfig
	// 明示的な設定がURLの認証情報より優先
	if opts.Username == "" {
		opts.Username = parsed.Username
	}
	if opts.Password == "" {
		opts.Password = parsed.Password
	}
	return opts, nil
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get retrieves a value from Redis
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// Set stores a value in Redis
func (r *RedisClient) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Del deletes keys from Redis
func (r *RedisClient) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// IsMissing reports whether err means the key does not exist
func IsMissing(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}
