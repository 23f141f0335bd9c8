package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/crazylearners/portal/internal/core/ports"
)

const defaultPrefix = "portal:slot:"

// SlotStore keeps named slots as plain Redis strings without expiry.
// Key format: <prefix><name>
type SlotStore struct {
	client redis.Cmdable
	prefix string
}

var _ ports.SlotStore = (*SlotStore)(nil)

// NewSlotStore wraps client. An empty prefix uses defaultPrefix.
func NewSlotStore(client redis.Cmdable, prefix string) *SlotStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SlotStore{client: client, prefix: prefix}
}

func (s *SlotStore) Get(ctx context.Context, name string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrSlotNotFound
		}
		return nil, fmt.Errorf("redis get slot: %w", err)
	}
	return b, nil
}

func (s *SlotStore) Set(ctx context.Context, name string, value []byte) error {
	if err := s.client.Set(ctx, s.key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set slot: %w", err)
	}
	return nil
}

// Delete removes the slot. Deleting a missing slot is not an error.
func (s *SlotStore) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("redis delete slot: %w", err)
	}
	return nil
}

func (s *SlotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SlotStore) key(name string) string {
	return s.prefix + name
}
