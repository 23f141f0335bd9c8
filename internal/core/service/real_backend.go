package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
)

// RealIdentityBackend delegates to a network identity provider. The provider's
// change stream is the only writer of the session; operations here never
// report identities themselves.
type RealIdentityBackend struct {
	provider ports.IdentityProvider
	log      zerolog.Logger

	mu          sync.Mutex
	unsubscribe func()
}

// NewRealIdentityBackend wraps provider.
func NewRealIdentityBackend(provider ports.IdentityProvider, log zerolog.Logger) *RealIdentityBackend {
	return &RealIdentityBackend{provider: provider, log: log}
}

func (b *RealIdentityBackend) Kind() domain.BackendKind { return domain.BackendReal }

// Start subscribes once to the provider's change stream. The provider delivers
// the current identity asynchronously.
func (b *RealIdentityBackend) Start(_ context.Context, onChange ports.ChangeFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unsubscribe != nil {
		return nil
	}
	b.unsubscribe = b.provider.OnAuthStateChanged(onChange)
	return nil
}

func (b *RealIdentityBackend) Login(ctx context.Context, cred domain.Credential) error {
	if _, err := b.provider.SignInWithPassword(ctx, cred.Email, cred.Secret); err != nil {
		return b.translate("login", err)
	}
	return nil
}

// Register creates the account and then sets its display name. A failure in
// the second step leaves the account in place and is reported as a
// PartialRegistrationError.
func (b *RealIdentityBackend) Register(ctx context.Context, cred domain.Credential, displayName string) error {
	created, err := b.provider.CreateUser(ctx, cred.Email, cred.Secret)
	if err != nil {
		return b.translate("register", err)
	}

	if _, err := b.provider.UpdateProfile(ctx, displayName); err != nil {
		b.log.Warn().Err(err).Str("uid", created.UID).Msg("profile update failed after account creation")
		return &domain.PartialRegistrationError{Identity: created.Clone(), Cause: err}
	}
	return nil
}

func (b *RealIdentityBackend) Logout(ctx context.Context) error {
	if err := b.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (b *RealIdentityBackend) Stop() {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// translate re-expresses provider errors as domain errors so consumers never
// branch on the backend.
func (b *RealIdentityBackend) translate(op string, err error) error {
	var rejection ports.CredentialRejection
	if errors.As(err, &rejection) && rejection.CredentialRejected() {
		return fmt.Errorf("%s: %w", op, domain.NewAuthError(rejection.UserMessage(), err))
	}
	b.log.Error().Err(err).Str("op", op).Msg("identity provider call failed")
	return fmt.Errorf("%s: identity provider: %w", op, err)
}
