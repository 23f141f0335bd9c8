package ports

import (
	"context"

	"github.com/crazylearners/portal/internal/core/domain"
)

// IdentityProvider is the network-backed identity service used by the real
// backend. Implementations report provider-specific errors; translating them
// into domain errors is the backend's job.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.UserIdentity, error)
	CreateUser(ctx context.Context, email, password string) (*domain.UserIdentity, error)
	UpdateProfile(ctx context.Context, displayName string) (*domain.UserIdentity, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChanged registers fn and delivers the current identity to it
	// asynchronously. The returned func unsubscribes.
	OnAuthStateChanged(fn ChangeFunc) (unsubscribe func())
}

// CredentialRejection is implemented by provider errors caused by the user's
// input (wrong password, unknown email, taken email) rather than by transport
// or server failures.
type CredentialRejection interface {
	error
	CredentialRejected() bool
	UserMessage() string
}
