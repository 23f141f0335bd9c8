package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
	"github.com/crazylearners/portal/internal/pkg/metrics"
)

// AuthSessionManager is the single source of truth for who is logged in. It
// hides the backend choice from every consumer.
//
// The backend's change callback is the only writer of the session. Login,
// register and logout delegate and never touch the state directly.
type AuthSessionManager struct {
	backend ports.IdentityBackend
	bus     ports.SessionEventBus
	log     zerolog.Logger
	now     func() time.Time

	mu          sync.RWMutex
	state       domain.SessionState
	initialized bool
	closed      bool
}

var _ ports.SessionManager = (*AuthSessionManager)(nil)

// NewAuthSessionManager creates a manager in the uninitialized phase. The
// backend is fixed for the manager's lifetime.
func NewAuthSessionManager(backend ports.IdentityBackend, bus ports.SessionEventBus, log zerolog.Logger) *AuthSessionManager {
	return &AuthSessionManager{
		backend: backend,
		bus:     bus,
		log:     log.With().Str("backend", string(backend.Kind())).Logger(),
		now:     time.Now,
		state: domain.SessionState{
			Loading: true,
			Backend: backend.Kind(),
		},
	}
}

// Initialize starts the backend once. It never fails: a backend that cannot
// start leaves the session anonymous.
func (m *AuthSessionManager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.initialized || m.closed {
		m.mu.Unlock()
		return
	}
	m.initialized = true
	m.mu.Unlock()

	if err := m.backend.Start(ctx, m.apply); err != nil {
		m.log.Error().Err(err).Msg("identity backend failed to start, continuing anonymous")
		m.apply(nil)
		return
	}
	m.log.Info().Msg("session manager initialized")
}

// CurrentSession returns a snapshot of the session. It never blocks on I/O.
func (m *AuthSessionManager) CurrentSession() domain.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Snapshot()
}

// Phase reports the lifecycle phase, including uninitialized.
func (m *AuthSessionManager) Phase() domain.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized {
		return domain.PhaseUninitialized
	}
	return m.state.Phase()
}

// IsDemoMode reports whether the mock backend is active.
func (m *AuthSessionManager) IsDemoMode() bool {
	return m.backend.Kind() == domain.BackendMock
}

func (m *AuthSessionManager) Login(ctx context.Context, email, secret string) error {
	if err := m.ready(); err != nil {
		return err
	}
	err := m.backend.Login(ctx, domain.Credential{Email: email, Secret: secret})
	m.record("login", err)
	return err
}

func (m *AuthSessionManager) Register(ctx context.Context, email, secret, displayName string) error {
	if err := m.ready(); err != nil {
		return err
	}
	err := m.backend.Register(ctx, domain.Credential{Email: email, Secret: secret}, displayName)
	m.record("register", err)
	return err
}

func (m *AuthSessionManager) Logout(ctx context.Context) error {
	if err := m.ready(); err != nil {
		return err
	}
	err := m.backend.Logout(ctx)
	m.record("logout", err)
	return err
}

// Subscribe returns a stream of session events and a func to stop it.
func (m *AuthSessionManager) Subscribe() (<-chan domain.SessionEvent, func()) {
	return m.bus.Subscribe()
}

// Close detaches the backend and resets the session, as on host unload.
// Subscribers see one last anonymous event before their streams end. The
// durable slot is left as is so the next start can restore it.
func (m *AuthSessionManager) Close() {
	m.backend.Stop()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.state.CurrentUser = nil
	m.state.Loading = false
	m.bus.Publish(domain.SessionEvent{
		State: m.state.Snapshot(),
		Phase: domain.PhaseAnonymous,
		At:    m.now().UTC(),
	})
	m.mu.Unlock()

	m.bus.Close()
	m.log.Info().Msg("session manager closed")
}

// apply is the backend's change callback.
func (m *AuthSessionManager) apply(user *domain.UserIdentity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	prev := m.state.Phase()
	m.state.CurrentUser = user.Clone()
	m.state.Loading = false
	phase := m.state.Phase()
	if !prev.CanTransitionTo(phase) {
		m.log.Warn().Str("from", string(prev)).Str("to", string(phase)).Msg("unexpected session transition")
	}

	m.bus.Publish(domain.SessionEvent{
		State: m.state.Snapshot(),
		Phase: phase,
		At:    m.now().UTC(),
	})
	metrics.SessionTransitionsTotal.WithLabelValues(string(phase)).Inc()

	ev := m.log.Debug().Str("phase", string(phase))
	if user != nil {
		ev = ev.Str("uid", user.UID)
	}
	ev.Msg("session changed")
}

func (m *AuthSessionManager) ready() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized || m.closed {
		return domain.ErrSessionNotReady
	}
	return nil
}

func (m *AuthSessionManager) record(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAuthentication):
		result = "rejected"
	case errors.Is(err, domain.ErrPartialRegistration):
		result = "partial"
	default:
		result = "error"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(op, string(m.backend.Kind()), result).Inc()

	if err != nil && result == "error" {
		m.log.Error().Err(err).Str("op", op).Msg("auth operation failed")
		return
	}
	m.log.Info().Str("op", op).Str("result", result).Msg("auth operation")
}
