package service

import (
	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/core/ports"
)

// ProviderFactory builds the network identity provider.
type ProviderFactory func() (ports.IdentityProvider, error)

// SelectBackend picks the identity backend once at startup. The real backend
// is used only when the provider is configured and its client builds; every
// other case falls back to the mock.
func SelectBackend(realConfigured bool, newProvider ProviderFactory, store *MockIdentityStore, log zerolog.Logger, mockOpts ...MockOption) ports.IdentityBackend {
	if realConfigured && newProvider != nil {
		provider, err := newProvider()
		if err == nil {
			log.Info().Msg("identity provider configured, using real backend")
			return NewRealIdentityBackend(provider, log)
		}
		log.Error().Err(err).Msg("identity provider client failed to build, falling back to mock backend")
	} else {
		log.Warn().Msg("identity provider not configured, running in demo mode")
	}
	return NewMockIdentityBackend(store, log, mockOpts...)
}
