// Package state keeps transient per-room status snapshots in redis. The
// data is advisory and TTL-bounded; losing it only costs a remote re-check.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dkeye/roomgate/internal/core"
	"github.com/dkeye/roomgate/internal/domain"
)

type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{client: client, ttl: ttl}
}

func (c *StatusCache) key(id domain.RoomID) string {
	return fmt.Sprintf("roomgate:room:%s:status", id)
}

func (c *StatusCache) Put(ctx context.Context, id domain.RoomID, snap core.StatusSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("state: marshal snapshot for room %s: %w", id, err)
	}
	if err := c.client.Set(ctx, c.key(id), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("state: put snapshot for room %s: %w", id, err)
	}
	return nil
}

func (c *StatusCache) Get(ctx context.Context, id domain.RoomID) (core.StatusSnapshot, bool, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.StatusSnapshot{}, false, nil
		}
		return core.StatusSnapshot{}, false, fmt.Errorf("state: get snapshot for room %s: %w", id, err)
	}
	var snap core.StatusSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return core.StatusSnapshot{}, false, fmt.Errorf("state: decode snapshot for room %s: %w", id, err)
	}
	return snap, true, nil
}

func (c *StatusCache) Drop(ctx context.Context, id domain.RoomID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("state: drop snapshot for room %s: %w", id, err)
	}
	return nil
}
