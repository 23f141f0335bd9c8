// Package slot holds the in-process slot store used when no external
// storage is configured.
package slot

import (
	"context"
	"sync"

	"github.com/crazylearners/portal/internal/core/ports"
)

// Memory is a ports.SlotStore backed by a map. Contents are lost on exit.
type Memory struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

var _ ports.SlotStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{slots: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[name]
	if !ok {
		return nil, ports.ErrSlotNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, name string, value []byte) error {
	m.mu.Lock()
	m.slots[name] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.slots, name)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
