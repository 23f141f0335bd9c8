package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
)

type stubSlots struct {
	mu      sync.Mutex
	data    map[string][]byte
	readErr error
}

func newStubSlots() *stubSlots {
	return &stubSlots{data: make(map[string][]byte)}
}

func (s *stubSlots) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, ports.ErrSlotNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *stubSlots) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *stubSlots) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *stubSlots) Ping(context.Context) error { return nil }

func (s *stubSlots) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func TestMockIdentityStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMockIdentityStore(newStubSlots(), "", zerolog.Nop())

	cases := []domain.UserIdentity{
		{UID: MockUserID, Email: "a@x.com", DisplayName: "Alice", EmailVerified: true},
		{UID: "u-2", Email: "ünï@cödé.in", DisplayName: "", EmailVerified: false},
		{UID: "u-3", Email: "quote\"s@x.com", DisplayName: "Line\nBreak", EmailVerified: true},
	}
	for _, want := range cases {
		in := want
		if err := store.Save(ctx, &in); err != nil {
			t.Fatalf("Save(%+v) returned error: %v", want, err)
		}
		got, ok := store.Load(ctx)
		if !ok {
			t.Fatalf("Load after Save reported absent for %+v", want)
		}
		if *got != want {
			t.Fatalf("round trip mismatch: got %+v, want %+v", *got, want)
		}
	}
}

func TestMockIdentityStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewMockIdentityStore(newStubSlots(), "", zerolog.Nop())

	_ = store.Save(ctx, &domain.UserIdentity{UID: "first", Email: "one@x.com"})
	_ = store.Save(ctx, &domain.UserIdentity{UID: "second", Email: "two@x.com"})

	got, ok := store.Load(ctx)
	if !ok || got.UID != "second" {
		t.Fatalf("expected last write to win, got %+v (ok=%v)", got, ok)
	}
}

func TestMockIdentityStore_RecordShape(t *testing.T) {
	ctx := context.Background()
	slots := newStubSlots()
	store := NewMockIdentityStore(slots, "custom", zerolog.Nop())

	if err := store.Save(ctx, &domain.UserIdentity{UID: "u", Email: "e@x.com", DisplayName: "E", EmailVerified: true}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	raw, err := slots.Get(ctx, "custom")
	if err != nil {
		t.Fatalf("expected slot %q to be written: %v", "custom", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("stored record is not JSON: %v", err)
	}
	for _, field := range []string{"uid", "email", "displayName", "emailVerified", "isAnonymous", "phoneNumber", "photoURL", "providerData", "refreshToken", "tenantId", "metadata"} {
		if _, ok := rec[field]; !ok {
			t.Errorf("stored record missing field %q", field)
		}
	}
	if rec["isAnonymous"] != false || rec["phoneNumber"] != nil || rec["refreshToken"] != "" {
		t.Errorf("unexpected placeholder defaults: %v", rec)
	}
}

func TestMockIdentityStore_LoadAbsent(t *testing.T) {
	store := NewMockIdentityStore(newStubSlots(), "", zerolog.Nop())
	if got, ok := store.Load(context.Background()); ok || got != nil {
		t.Fatalf("expected absent on empty slot, got %+v", got)
	}
}

func TestMockIdentityStore_LoadMalformed(t *testing.T) {
	ctx := context.Background()
	for name, content := range map[string]string{
		"not json":    "{not json",
		"wrong type":  `["a","b"]`,
		"missing uid": `{"email":"a@x.com"}`,
		"empty":       "",
	} {
		t.Run(name, func(t *testing.T) {
			slots := newStubSlots()
			_ = slots.Set(ctx, DefaultMockSlotKey, []byte(content))
			store := NewMockIdentityStore(slots, "", zerolog.Nop())
			if got, ok := store.Load(ctx); ok {
				t.Fatalf("expected malformed content to be absent, got %+v", got)
			}
		})
	}
}

func TestMockIdentityStore_LoadReadError(t *testing.T) {
	slots := newStubSlots()
	slots.readErr = errors.New("connection refused")
	store := NewMockIdentityStore(slots, "", zerolog.Nop())
	if _, ok := store.Load(context.Background()); ok {
		t.Fatalf("expected read failure to be reported as absent")
	}
}

func TestMockIdentityStore_Clear(t *testing.T) {
	ctx := context.Background()
	slots := newStubSlots()
	store := NewMockIdentityStore(slots, "", zerolog.Nop())

	_ = store.Save(ctx, &domain.UserIdentity{UID: "u"})
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if slots.has(DefaultMockSlotKey) {
		t.Fatalf("expected slot to be removed")
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear returned error: %v", err)
	}
}
