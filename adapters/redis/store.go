package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rewardkit/core"
	"rewardkit/user"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string        `json:"addr" env:"REWARDKIT_REDIS_ADDR"`
	Password     string        `json:"password" env:"REWARDKIT_REDIS_PASSWORD"`
	DB           int           `json:"db" env:"REWARDKIT_REDIS_DB"`
	PoolSize     int           `json:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store persists reward user documents as JSON blobs in Redis, one key per
// user: reward:user:{id}.
type Store struct {
	client *redis.Client
}

// New creates a Redis-backed store and verifies the connection.
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Store{client: client}, nil
}

// NewWithClient creates a Store using an existing client (useful for testing).
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error { return s.client.Close() }

func userKey(id core.UserID) string {
	return fmt.Sprintf("reward:user:%s", id)
}

// Load fetches the user's document. A missing key means a never-seen user
// and yields an empty document.
func (s *Store) Load(ctx context.Context, id core.UserID) (user.Document, error) {
	raw, err := s.client.Get(ctx, userKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return user.Document{}, nil
		}
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	var doc user.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return doc, nil
}

// Save replaces the user's document.
func (s *Store) Save(ctx context.Context, id core.UserID, doc user.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", id, err)
	}
	if err := s.client.Set(ctx, userKey(id), b, 0).Err(); err != nil {
		return fmt.Errorf("save user %s: %w", id, err)
	}
	return nil
}

// Delete removes a stored document. Only explicit reset tooling calls this.
func (s *Store) Delete(ctx context.Context, id core.UserID) error {
	if err := s.client.Del(ctx, userKey(id)).Err(); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}
