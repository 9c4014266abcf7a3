// Package cache pushes committed match records onto a Redis list so other
// services can consume the match history without polling Postgres.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/ranked/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list match records are appended to.
const DefaultQueueName = "ranked_matches"

// HistoryFeed appends every committed match to a Redis list.
type HistoryFeed struct {
	rdb   *redis.Client
	queue string
}

// NewHistoryFeed wraps an existing client. An empty queue uses DefaultQueueName.
func NewHistoryFeed(rdb *redis.Client, queue string) *HistoryFeed {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &HistoryFeed{rdb: rdb, queue: queue}
}

// Connect dials Redis at addr and verifies it with a ping.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// PublishMatch serializes m to JSON and RPushes it onto the feed's list.
func (f *HistoryFeed) PublishMatch(ctx context.Context, m *models.Match) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal match: %w", err)
	}
	if err := f.rdb.RPush(ctx, f.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", f.queue, err)
	}
	return nil
}

// Close releases the underlying client.
func (f *HistoryFeed) Close() error {
	return f.rdb.Close()
}
