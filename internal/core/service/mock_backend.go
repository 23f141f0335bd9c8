package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
)

const (
	// DefaultMockLatency simulates the provider round trip on login/register.
	DefaultMockLatency = 800 * time.Millisecond
	// MockUserID is the fixed synthetic id given to every fabricated identity.
	MockUserID = "mock-user-123"
)

// MockIdentityBackend fabricates identities locally and persists them to a
// single slot. It never checks the secret: any non-empty credential succeeds.
// This is a demo simulation and not a security boundary.
type MockIdentityBackend struct {
	store   *MockIdentityStore
	latency time.Duration
	sleep   func(time.Duration)
	log     zerolog.Logger

	// opMu serializes persist+emit so the slot and the session never
	// disagree when operations overlap.
	opMu sync.Mutex

	mu       sync.Mutex
	onChange ports.ChangeFunc
}

// MockOption customises a MockIdentityBackend.
type MockOption func(*MockIdentityBackend)

// WithLatency overrides the simulated round trip. Zero disables it.
func WithLatency(d time.Duration) MockOption {
	return func(b *MockIdentityBackend) { b.latency = d }
}

// WithSleep replaces time.Sleep, mainly for tests.
func WithSleep(fn func(time.Duration)) MockOption {
	return func(b *MockIdentityBackend) { b.sleep = fn }
}

// NewMockIdentityBackend returns the local substitute for the identity provider.
func NewMockIdentityBackend(store *MockIdentityStore, log zerolog.Logger, opts ...MockOption) *MockIdentityBackend {
	b := &MockIdentityBackend{
		store:   store,
		latency: DefaultMockLatency,
		sleep:   time.Sleep,
		log:     log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *MockIdentityBackend) Kind() domain.BackendKind { return domain.BackendMock }

// Start restores the persisted identity, if any, and reports it synchronously.
func (b *MockIdentityBackend) Start(ctx context.Context, onChange ports.ChangeFunc) error {
	b.mu.Lock()
	b.onChange = onChange
	b.mu.Unlock()

	b.opMu.Lock()
	defer b.opMu.Unlock()

	user, ok := b.store.Load(ctx)
	if ok {
		b.log.Info().Str("uid", user.UID).Msg("mock session restored")
	}
	b.emit(user)
	return nil
}

func (b *MockIdentityBackend) Login(ctx context.Context, cred domain.Credential) error {
	return b.signIn(ctx, cred, domain.LocalPart(cred.Email))
}

func (b *MockIdentityBackend) Register(ctx context.Context, cred domain.Credential, displayName string) error {
	return b.signIn(ctx, cred, displayName)
}

// Logout clears the slot and the session. It is idempotent.
func (b *MockIdentityBackend) Logout(ctx context.Context) error {
	b.opMu.Lock()
	defer b.opMu.Unlock()

	if err := b.store.Clear(ctx); err != nil {
		return fmt.Errorf("mock logout: %w", err)
	}
	b.emit(nil)
	return nil
}

func (b *MockIdentityBackend) Stop() {
	b.mu.Lock()
	b.onChange = nil
	b.mu.Unlock()
}

// signIn persists first and reports second, so the slot and the session
// agree as soon as the call returns. The latency is spent outside opMu.
func (b *MockIdentityBackend) signIn(ctx context.Context, cred domain.Credential, displayName string) error {
	if !cred.Complete() {
		return domain.NewAuthError("Please enter your email and password.", nil)
	}
	if b.latency > 0 {
		b.sleep(b.latency)
	}

	user := &domain.UserIdentity{
		UID:           MockUserID,
		Email:         cred.Email,
		DisplayName:   displayName,
		EmailVerified: true,
	}

	b.opMu.Lock()
	defer b.opMu.Unlock()

	if err := b.store.Save(ctx, user); err != nil {
		return fmt.Errorf("mock sign-in: %w", err)
	}
	b.emit(user)
	return nil
}

func (b *MockIdentityBackend) emit(user *domain.UserIdentity) {
	b.mu.Lock()
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn(user)
	}
}
