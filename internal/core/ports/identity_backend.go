package ports

import (
	"context"

	"github.com/crazylearners/portal/internal/core/domain"
)

// ChangeFunc receives the current identity, or nil when signed out. It is the
// only path through which a backend may change the session.
type ChangeFunc func(user *domain.UserIdentity)

// IdentityBackend is one of the two variants selected once at startup.
type IdentityBackend interface {
	Kind() domain.BackendKind
	// Start wires onChange to the backend. Mock backends call onChange before
	// returning; real backends call it whenever the provider reports a change.
	Start(ctx context.Context, onChange ChangeFunc) error
	Login(ctx context.Context, cred domain.Credential) error
	Register(ctx context.Context, cred domain.Credential, displayName string) error
	Logout(ctx context.Context) error
	// Stop detaches onChange. It is safe to call more than once.
	Stop()
}
