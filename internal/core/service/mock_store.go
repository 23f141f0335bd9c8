package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
)

// DefaultMockSlotKey is the slot holding the mock identity record.
const DefaultMockSlotKey = "mockUser"

// storedIdentity is the on-slot record. Fields past emailVerified are
// placeholders that keep the record shaped like a provider user.
type storedIdentity struct {
	UID           string          `json:"uid"`
	Email         string          `json:"email"`
	DisplayName   string          `json:"displayName"`
	EmailVerified bool            `json:"emailVerified"`
	IsAnonymous   bool            `json:"isAnonymous"`
	PhoneNumber   *string         `json:"phoneNumber"`
	PhotoURL      *string         `json:"photoURL"`
	ProviderData  []any           `json:"providerData"`
	RefreshToken  string          `json:"refreshToken"`
	TenantID      *string         `json:"tenantId"`
	Metadata      json.RawMessage `json:"metadata"`
}

// MockIdentityStore keeps at most one identity record in a single slot.
// Writes are last-write-wins.
type MockIdentityStore struct {
	slots ports.SlotStore
	key   string
	log   zerolog.Logger
}

// NewMockIdentityStore creates a store over the given slot key. An empty key
// falls back to DefaultMockSlotKey.
func NewMockIdentityStore(slots ports.SlotStore, key string, log zerolog.Logger) *MockIdentityStore {
	if key == "" {
		key = DefaultMockSlotKey
	}
	return &MockIdentityStore{slots: slots, key: key, log: log}
}

// Save overwrites the slot with the serialized identity.
func (s *MockIdentityStore) Save(ctx context.Context, user *domain.UserIdentity) error {
	if user == nil {
		return errors.New("mock store: nil identity")
	}
	data, err := json.Marshal(storedIdentity{
		UID:           user.UID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		EmailVerified: user.EmailVerified,
		ProviderData:  []any{},
		Metadata:      json.RawMessage(`{}`),
	})
	if err != nil {
		return fmt.Errorf("mock store: marshal: %w", err)
	}
	if err := s.slots.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("mock store: write slot %q: %w", s.key, err)
	}
	return nil
}

// Load reads the slot. Missing, unreadable or malformed content is reported
// as absent.
func (s *MockIdentityStore) Load(ctx context.Context) (*domain.UserIdentity, bool) {
	data, err := s.slots.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ports.ErrSlotNotFound) {
			s.log.Warn().Err(err).Str("slot", s.key).Msg("mock store read failed, treating as absent")
		}
		return nil, false
	}

	var rec storedIdentity
	if err := json.Unmarshal(data, &rec); err != nil || rec.UID == "" {
		s.log.Warn().Err(domain.ErrStorageCorrupt).AnErr("cause", err).Str("slot", s.key).Msg("discarding stored identity")
		return nil, false
	}

	return &domain.UserIdentity{
		UID:           rec.UID,
		Email:         rec.Email,
		DisplayName:   rec.DisplayName,
		EmailVerified: rec.EmailVerified,
	}, true
}

// Clear removes the slot.
func (s *MockIdentityStore) Clear(ctx context.Context) error {
	if err := s.slots.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("mock store: clear slot %q: %w", s.key, err)
	}
	return nil
}
