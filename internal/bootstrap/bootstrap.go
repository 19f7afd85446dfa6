// Package bootstrap builds the shared runtime pieces both binaries need
// from a loaded config.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/shubh-37/idea-processor/config"
	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/database"
	"github.com/shubh-37/idea-processor/internal/session"
	"github.com/shubh-37/idea-processor/internal/store"
)

// OpenStore connects to Postgres when DATABASE_URL is set and falls back
// to a process-local store otherwise. The returned func releases it.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Println("⚠️ DATABASE_URL not set, ideas are kept in memory only")
		return store.NewMemory(), func() {}, nil
	}

	db, err := database.NewDB(ctx, cfg.DatabaseURL, database.PoolSettings{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.CreateTables(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create tables: %w", err)
	}
	log.Println("✅ Database connected and ready")
	return database.NewStore(db), db.Close, nil
}

// OpenRedis returns nil when REDIS_URL is not set
func OpenRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	log.Println("✅ Redis connected")
	return client, nil
}

// NewGenerator returns an orchestrator that fails every call with
// agents.ErrNotConfigured when no API key is set.
func NewGenerator(cfg *config.Config, opts ...agents.Option) *agents.Orchestrator {
	var provider agents.Provider
	if cfg.AIEnabled() {
		provider = agents.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	} else {
		log.Println("⚠️ OPENAI_API_KEY not set, AI features are disabled")
	}
	return agents.NewOrchestrator(provider, agents.Settings{
		PrimaryModel:  cfg.PrimaryModel,
		FallbackModel: cfg.FallbackModel,
		Timeout:       cfg.AITimeout,
	}, opts...)
}

// SessionOptions maps the config and optional event preset to controller options
func SessionOptions(cfg *config.Config, ev *config.Event) []session.Option {
	opts := []session.Option{session.WithStorePolicy(StorePolicy(cfg.StorePolicy))}
	if ev != nil && ev.Countdown > 0 {
		opts = append(opts, session.WithCountdown(ev.Countdown))
	}
	return opts
}

func StorePolicy(name string) session.StorePolicy {
	if name == session.FailClosed.String() {
		return session.FailClosed
	}
	return session.FailOpen
}

// SeedEvent saves the preset's default context for every session it names
func SeedEvent(ctx context.Context, hub *session.Hub, ev *config.Event) {
	if ev == nil {
		return
	}
	for _, id := range ev.SessionIDs {
		ctl := hub.Get(id)
		if ev.DefaultContext != "" {
			ctl.SaveDefaultContext(ctx, ev.DefaultContext)
		}
	}
	if ev.Name != "" {
		log.Printf("🎪 Event preset %q loaded for %d session(s)", ev.Name, len(ev.SessionIDs))
	}
}
