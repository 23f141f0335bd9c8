package ports

import (
	"context"
	"errors"
)

// ErrSlotNotFound is returned by SlotStore.Get when the slot is empty.
var ErrSlotNotFound = errors.New("slot not found")

// SlotStore is a named key-value unit of durable storage.
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the slot. Deleting an empty slot is not an error.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
