package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crazylearners/portal/internal/core/ports"
)

// stubCmdable keeps strings in a map. Only the commands SlotStore sends are
// implemented; anything else panics on the nil embedded interface.
type stubCmdable struct {
	redis.Cmdable
	data   map[string]string
	getErr error
	keys   []string
}

func newStubCmdable() *stubCmdable {
	return &stubCmdable{data: make(map[string]string)}
}

func (s *stubCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	s.keys = append(s.keys, key)
	if s.getErr != nil {
		return redis.NewStringResult("", s.getErr)
	}
	v, ok := s.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *stubCmdable) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	s.keys = append(s.keys, key)
	if expiration != 0 {
		return redis.NewStatusResult("", errors.New("unexpected expiry"))
	}
	s.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (s *stubCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		s.keys = append(s.keys, k)
		if _, ok := s.data[k]; ok {
			delete(s.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (s *stubCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func TestSlotStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newStubCmdable()
	store := NewSlotStore(client, "")

	if err := store.Set(ctx, "mockUser", []byte(`{"uid":"mock-user-123"}`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, err := store.Get(ctx, "mockUser")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(got) != `{"uid":"mock-user-123"}` {
		t.Fatalf("unexpected value %q", got)
	}
	if _, ok := client.data["portal:slot:mockUser"]; !ok {
		t.Fatalf("expected default prefix on key, got keys %v", client.keys)
	}
}

func TestSlotStore_CustomPrefix(t *testing.T) {
	client := newStubCmdable()
	store := NewSlotStore(client, "test:")

	if err := store.Set(context.Background(), "a", []byte("1")); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if client.keys[0] != "test:a" {
		t.Fatalf("expected key test:a, got %q", client.keys[0])
	}
}

func TestSlotStore_MissingIsNotFound(t *testing.T) {
	store := NewSlotStore(newStubCmdable(), "")

	if _, err := store.Get(context.Background(), "absent"); !errors.Is(err, ports.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestSlotStore_GetError(t *testing.T) {
	client := newStubCmdable()
	client.getErr = errors.New("connection reset")
	store := NewSlotStore(client, "")

	_, err := store.Get(context.Background(), "mockUser")
	if err == nil || errors.Is(err, ports.ErrSlotNotFound) {
		t.Fatalf("expected a transport error, got %v", err)
	}
	if !errors.Is(err, client.getErr) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestSlotStore_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	client := newStubCmdable()
	store := NewSlotStore(client, "")
	_ = store.Set(ctx, "mockUser", []byte("x"))

	for i := 0; i < 2; i++ {
		if err := store.Delete(ctx, "mockUser"); err != nil {
			t.Fatalf("Delete #%d returned error: %v", i+1, err)
		}
	}
	if _, err := store.Get(ctx, "mockUser"); !errors.Is(err, ports.ErrSlotNotFound) {
		t.Fatalf("expected slot to be gone, got %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}
