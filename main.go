package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	agentsx "github.com/bluecastapp/bluecast/agent/agents"
	orchestratorx "github.com/bluecastapp/bluecast/agent/agents/orchestrator"
	chatx "github.com/bluecastapp/bluecast/agent/chat"
	llmx "github.com/bluecastapp/bluecast/agent/llm"
	statex "github.com/bluecastapp/bluecast/agent/state"
	configx "github.com/bluecastapp/bluecast/pkg/config"
	_ "github.com/bluecastapp/bluecast/pkg/logger/autoload"
	openmeteox "github.com/bluecastapp/bluecast/pkg/openmeteo"
	openrouterx "github.com/bluecastapp/bluecast/pkg/openrouter"
)

type AppConfig struct {
	// StoreBackend picks the session store: memory, redis, or postgres.
	StoreBackend string `envconfig:"STORE_BACKEND" split_words:"true" default:"memory"`

	SkipPreferenceGate bool `envconfig:"SKIP_PREFERENCE_GATE" split_words:"true"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")

	store, closeStore := newStore(appCfg.StoreBackend)
	defer closeStore()

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	registry, err := agentsx.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize agent registry")
	}
	if llmCfg.Configured() {
		preflightModels(ctx, *llmCfg)
	} else {
		log.Warn().Msg("no OPENROUTER_API_KEY set, running with offline extractor and passthrough coach")
	}

	geoCfg := configx.MustNew[openmeteox.GeocodingConfig]("GEOCODING")
	geocoder, err := openmeteox.NewGeocodingClient(*geoCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize geocoding client")
	}

	marineCfg := configx.MustNew[openmeteox.MarineConfig]("MARINE")
	forecasts, err := openmeteox.NewMarineClient(*marineCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize marine client")
	}

	orch, err := orchestratorx.New(store, registry, geocoder, forecasts, orchestratorx.Config{
		SkipPreferenceGate: appCfg.SkipPreferenceGate,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize orchestrator")
	}

	userID := "user_" + uuid.NewString()[:8]
	sessionID := "session_" + uuid.NewString()[:8]
	if _, err := orch.CreateSession(ctx, userID, sessionID); err != nil {
		log.Fatal().Err(err).Msg("failed to create session")
	}

	loop, err := chatx.NewLoop(orch, userID, sessionID, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize chat loop")
	}
	if err := loop.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("chat loop failed")
	}
}

// preflightModels checks every distinct model the registry will use
// through the raw OpenRouter SDK before the chat loop starts.
func preflightModels(ctx context.Context, cfg llmx.Config) {
	seen := map[string]bool{}
	for _, role := range []llmx.Role{llmx.RoleExtractor, llmx.RoleCoach} {
		roleCfg := cfg.OpenRouterFor(role)
		if seen[roleCfg.Model] {
			continue
		}
		seen[roleCfg.Model] = true
		if err := openrouterx.Preflight(ctx, roleCfg); err != nil {
			log.Fatal().Err(err).Str("role", string(role)).Msg("openrouter preflight failed")
		}
	}
}

func newStore(backend string) (statex.Store, func()) {
	switch backend {
	case "redis":
		redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize redis session store")
		}
		return store, func() {}
	case "postgres":
		pgCfg := configx.MustNew[statex.PostgresConfig]("POSTGRES")
		store, err := statex.NewPostgresStore(*pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize postgres session store")
		}
		if err := store.Init(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize postgres schema")
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close postgres session store")
			}
		}
	default:
		return statex.NewMemoryStore(), func() {}
	}
}
