package ports

import (
	"context"

	"github.com/crazylearners/portal/internal/core/domain"
)

// SessionManager is the consumer contract used by navigation, route guards
// and the login form. Nothing else about authentication is exposed.
type SessionManager interface {
	CurrentSession() domain.SessionState
	Login(ctx context.Context, email, secret string) error
	Register(ctx context.Context, email, secret, displayName string) error
	Logout(ctx context.Context) error
	IsDemoMode() bool
	Subscribe() (events <-chan domain.SessionEvent, cancel func())
}
