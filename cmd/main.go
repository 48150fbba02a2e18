package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/davidbz/cinder/internal/config"
	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/http"
	"github.com/davidbz/cinder/internal/lexicon"
	"github.com/davidbz/cinder/internal/observability"
	"github.com/davidbz/cinder/internal/policy"
	"github.com/davidbz/cinder/internal/provider/openai"
	"github.com/davidbz/cinder/internal/provider/registry"
	"github.com/davidbz/cinder/internal/provider/script"
	"github.com/davidbz/cinder/internal/session"
	sessionredis "github.com/davidbz/cinder/internal/session/redis"
	"github.com/davidbz/cinder/internal/stream"
)

// ErrClientNotConfigured indicates that a model client is not configured and should be skipped.
var ErrClientNotConfigured = errors.New("client not configured")

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(func() domain.EventPublisher {
		return observability.NewEventBus()
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// Lexicon and policy pipeline
	if err := container.Provide(func(cfg *config.PolicyConfig) (*lexicon.Lexicon, error) {
		if cfg.LexiconPath == "" {
			return lexicon.Default(), nil
		}
		return lexicon.Load(cfg.LexiconPath)
	}); err != nil {
		log.Fatalf("Failed to provide lexicon: %v", err)
	}
	if err := container.Provide(func(lex *lexicon.Lexicon, cfg *config.PolicyConfig) domain.Planner {
		return policy.NewPlanner(lex, cfg.MaxOutputTokens)
	}); err != nil {
		log.Fatalf("Failed to provide planner: %v", err)
	}

	// Session store
	if err := container.Provide(func(cfg *config.RedisConfig) domain.SessionStore {
		if !cfg.Enabled {
			return session.NewMemoryStore()
		}

		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute

		return sessionredis.NewStore(client, ttl)
	}); err != nil {
		log.Fatalf("Failed to provide session store: %v", err)
	}

	// Stream demultiplexer
	if err := container.Provide(func() domain.StreamDemux {
		return stream.NewDemux()
	}); err != nil {
		log.Fatalf("Failed to provide demultiplexer: %v", err)
	}

	// Client Registry
	if err := container.Provide(func() domain.ClientRegistry {
		return registry.NewRegistry()
	}); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}

	// Script client (always available for local development)
	if err := container.Provide(script.NewClient); err != nil {
		log.Fatalf("Failed to provide script client: %v", err)
	}

	// OpenAI client
	if err := container.Provide(func(cfg *config.Config) (*openai.Client, error) {
		if cfg.OpenAI.APIKey == "" {
			return nil, ErrClientNotConfigured
		}

		return openai.NewClient(openai.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Timeout:    cfg.OpenAI.Timeout,
			MaxRetries: cfg.OpenAI.MaxRetries,
		})
	}); err != nil {
		log.Fatalf("Failed to provide OpenAI client: %v", err)
	}

	// Register clients with registry (invoked for side effects)
	if err := container.Invoke(func(
		reg domain.ClientRegistry,
		scriptClient *script.Client,
	) error {
		if err := reg.Register(context.Background(), scriptClient); err != nil {
			return fmt.Errorf("failed to register script client: %w", err)
		}
		return nil
	}); err != nil {
		log.Fatalf("Failed to register script client: %v", err)
	}

	if err := container.Invoke(func(
		reg domain.ClientRegistry,
		openaiClient *openai.Client,
	) error {
		if err := reg.Register(context.Background(), openaiClient); err != nil {
			return fmt.Errorf("failed to register OpenAI client: %w", err)
		}
		return nil
	}); err != nil {
		// Ignore ErrClientNotConfigured as it's expected for optional clients
		if !errors.Is(err, ErrClientNotConfigured) {
			log.Fatalf("Failed to register OpenAI client: %v", err)
		}
	}

	// Domain Services
	if err := container.Provide(domain.NewTurnService); err != nil {
		log.Fatalf("Failed to provide turn service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(http.NewMiddleware); err != nil {
		log.Fatalf("Failed to provide middleware: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
