package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/core/ports"
	"github.com/crazylearners/portal/internal/core/service"
	"github.com/crazylearners/portal/internal/infrastructure/db/mongo"
	"github.com/crazylearners/portal/internal/infrastructure/db/redis"
	"github.com/crazylearners/portal/internal/infrastructure/genai"
	"github.com/crazylearners/portal/internal/infrastructure/identity/firebase"
	"github.com/crazylearners/portal/internal/infrastructure/queue"
	"github.com/crazylearners/portal/internal/infrastructure/slot"
	"github.com/crazylearners/portal/internal/pkg/config"
	"github.com/crazylearners/portal/pkg/logger"
)

func noCleanup(context.Context) error { return nil }

// setupStorage opens the configured slot store. An unreachable store falls
// back to memory so the demo keeps working without persistence.
func setupStorage(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (ports.SlotStore, string, func(context.Context) error) {
	switch cfg.Driver {
	case config.DriverRedis:
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error().Err(err).Msg("redis unavailable, using in-memory slot")
			break
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis slot store connected")
		return redis.NewSlotStore(client, cfg.Redis.Prefix), config.DriverRedis, func(context.Context) error {
			return client.Close()
		}

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "portal",
		})
		if err != nil {
			log.Error().Err(err).Msg("mongo unavailable, using in-memory slot")
			break
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo slot store connected")
		return mongo.NewSlotStore(db), config.DriverMongo, client.Disconnect
	}

	return slot.NewMemory(), config.DriverMemory, noCleanup
}

// setupSessions selects the identity backend once and builds the manager.
func setupSessions(cfg config.IdentityConfig, slots ports.SlotStore, log zerolog.Logger) (*service.AuthSessionManager, func(context.Context) error) {
	identityLog := logger.Component(log, "identity")
	store := service.NewMockIdentityStore(slots, cfg.MockSlotKey, identityLog)

	var client *firebase.Client
	newProvider := func() (ports.IdentityProvider, error) {
		c, err := firebase.New(firebase.Config{
			APIKey:     cfg.APIKey,
			Endpoint:   cfg.Endpoint,
			AuthDomain: cfg.AuthDomain,
			ProjectID:  cfg.ProjectID,
			AppID:      cfg.AppID,
		}, identityLog)
		if err != nil {
			return nil, err
		}
		client = c
		return c, nil
	}

	backend := service.SelectBackend(
		cfg.RealProviderConfigured(),
		newProvider,
		store,
		identityLog,
		service.WithLatency(cfg.MockLatency),
	)

	bus := queue.NewBroadcaster(logger.Component(log, "events"))
	sessions := service.NewAuthSessionManager(backend, bus, logger.Component(log, "session"))

	return sessions, func(context.Context) error {
		if client != nil {
			client.Close()
		}
		return nil
	}
}

// setupTutor builds the tutor. Without an API key it answers with a fixed
// message instead of calling the model.
func setupTutor(ctx context.Context, cfg config.TutorConfig, log zerolog.Logger) *service.Tutor {
	tutorLog := logger.Component(log, "tutor")
	if cfg.APIKey == "" {
		tutorLog.Warn().Msg("API_KEY not set, tutor chat disabled")
		return service.NewTutor(nil, cfg.Model, tutorLog)
	}

	client, err := genai.New(ctx, cfg.APIKey)
	if err != nil {
		tutorLog.Error().Err(err).Msg("tutor client failed to build, chat disabled")
		return service.NewTutor(nil, cfg.Model, tutorLog)
	}
	return service.NewTutor(client, cfg.Model, tutorLog)
}
