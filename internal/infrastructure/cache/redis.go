package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meetnotes-team/meetnotes/internal/domain/entities"
	"github.com/meetnotes-team/meetnotes/pkg/config"
)

// NewRedisClient connects to Redis using the application config and verifies
// the connection with a ping.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisCallStore keeps active call associations in Redis so multiple
// instances can share the same call state. Values are JSON encoded.
type RedisCallStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCallStore creates a Redis-backed call store. A zero ttl defaults to
// 24 hours.
func NewRedisCallStore(client *redis.Client, ttl time.Duration) *RedisCallStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCallStore{client: client, ttl: ttl}
}

func callKey(callID string) string {
	return "calls:active:" + callID
}

// Put stores the association for a call, replacing any previous entry.
func (rs *RedisCallStore) Put(ctx context.Context, assoc *entities.CallAssociation) error {
	data, err := json.Marshal(assoc)
	if err != nil {
		return fmt.Errorf("failed to marshal call association: %w", err)
	}
	if err := rs.client.Set(ctx, callKey(assoc.CallID), data, rs.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store call association: %w", err)
	}
	return nil
}

// Get returns the association for a call, or nil if absent.
func (rs *RedisCallStore) Get(ctx context.Context, callID string) (*entities.CallAssociation, error) {
	data, err := rs.client.Get(ctx, callKey(callID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read call association: %w", err)
	}
	return decodeAssociation(data)
}

// Remove deletes and returns the association for a call. GETDEL makes the
// read-and-delete a single Redis operation, so concurrent callers see at
// most one non-nil result per entry.
func (rs *RedisCallStore) Remove(ctx context.Context, callID string) (*entities.CallAssociation, error) {
	data, err := rs.client.GetDel(ctx, callKey(callID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove call association: %w", err)
	}
	return decodeAssociation(data)
}

func decodeAssociation(data []byte) (*entities.CallAssociation, error) {
	var assoc entities.CallAssociation
	if err := json.Unmarshal(data, &assoc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal call association: %w", err)
	}
	return &assoc, nil
}
