// Package cache provides a Redis-backed board snapshot store, for setups where
// several dealboard processes share one board
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// RedisStore keeps one snapshot per board in a Redis hash with two fields:
// "version" and "data" (the JSON snapshot)
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to redisURL and verifies the connection
func NewRedisStore(redisURL, board string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, board), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, board string) *RedisStore {
	if board == "" {
		board = "default"
	}
	return &RedisStore{client: client, key: "dealboard:board:" + board}
}

// Load returns the stored snapshot, or an empty snapshot at version 0
func (s *RedisStore) Load(ctx context.Context) (*models.Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	data, ok := fields["data"]
	if !ok {
		return &models.Snapshot{Deals: []*models.Deal{}, Columns: []*models.Column{}}, nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Save stores snap if the stored version still equals expectedVersion.
// A concurrent writer touching the key between the check and the write also
// yields models.ErrVersionConflict.
func (s *RedisStore) Save(ctx context.Context, snap *models.Snapshot, expectedVersion int64) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, s.key, "version").Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return fmt.Errorf("read snapshot version: %w", err)
		}
		if current != expectedVersion {
			return fmt.Errorf("stored version %d, expected %d: %w", current, expectedVersion, models.ErrVersionConflict)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.key, "version", snap.Version, "data", data)
			return nil
		})
		return err
	}, s.key)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("concurrent write: %w", models.ErrVersionConflict)
	}
	if err != nil {
		return err
	}

	slog.Debug("snapshot saved to redis", "key", s.key, "version", snap.Version)
	return nil
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
