package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shubh-37/idea-processor/config"
	"github.com/shubh-37/idea-processor/internal/agents"
	"github.com/shubh-37/idea-processor/internal/api"
	"github.com/shubh-37/idea-processor/internal/bootstrap"
	"github.com/shubh-37/idea-processor/internal/gate"
	"github.com/shubh-37/idea-processor/internal/linear"
	"github.com/shubh-37/idea-processor/internal/session"
	slackpkg "github.com/shubh-37/idea-processor/internal/slack"
	"github.com/shubh-37/idea-processor/internal/submission"
)

func main() {
	printEvent := flag.Bool("example-event", false, "print an example EVENT_FILE and exit")
	debug := flag.Bool("debug", false, "include error details in API responses")
	flag.Parse()

	if *printEvent {
		fmt.Print(config.ExampleEvent())
		return
	}

	// Load configuration
	cfg := config.LoadConfig()
	ev, err := config.LoadEvent(cfg.EventFile)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	ev.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	logCloser := cfg.SetupLogging()
	defer logCloser.Close()

	log.Println("🚀 Exact Idea Processor starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Storage error: %v", err)
	}
	defer closeStore()

	rdb, err := bootstrap.OpenRedis(ctx, cfg)
	if err != nil {
		log.Fatalf("Redis error: %v", err)
	}

	// Throttles and cooldowns live in Redis when available so they hold
	// across instances and restarts.
	accessCounters := gate.CounterStore(gate.NewMemoryCounterStore())
	loginCounters := gate.CounterStore(gate.NewMemoryCounterStore())
	cooldown := submission.Cooldown(submission.NewMemoryCooldown(cfg.SubmitCooldown))
	if rdb != nil {
		defer rdb.Close()
		accessCounters = gate.NewRedisCounterStore(rdb, "access", 0)
		loginCounters = gate.NewRedisCounterStore(rdb, "login", 0)
		cooldown = submission.NewRedisCooldown(rdb, cfg.SubmitCooldown)
	}
	throttleOpts := []gate.ThrottleOption{
		gate.WithMaxAttempts(cfg.LockoutAttempts),
		gate.WithLockout(cfg.LockoutDuration),
	}

	metrics := api.NewMetrics()
	ai := bootstrap.NewGenerator(cfg, agents.WithObserver(metrics))

	hub := session.NewHub(st, ai, bootstrap.SessionOptions(cfg, ev)...)
	defer hub.Close()
	bootstrap.SeedEvent(ctx, hub, ev)

	submissions := submission.New(st, cooldown)
	deps := api.Deps{
		AI:             ai,
		Hub:            hub,
		Store:          st,
		Gate:           gate.New(st, gate.NewThrottle(accessCounters, throttleOpts...)),
		Codes:          gate.NewRegistry(st),
		Submissions:    submissions,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		Debug:          *debug,
		Admin: gate.NewAdminAuth(gate.AdminSettings{
			Email:        cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
			JWTSecret:    cfg.JWTSecret,
			TokenTTL:     12 * time.Hour,
		}, gate.NewThrottle(loginCounters, throttleOpts...)),
	}

	if cfg.SlackEnabled() {
		handler, err := setupSlack(ctx, cfg, hub, submissions)
		if err != nil {
			log.Fatalf("Slack error: %v", err)
		}
		deps.Slack = handler
	}

	if cfg.LinearEnabled() {
		backlog, err := linear.NewClient(cfg.LinearAPIKey, cfg.LinearTeamID)
		if err != nil {
			log.Fatalf("Linear error: %v", err)
		}
		deps.Backlog = backlog
	}

	server := api.NewServer(deps)
	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Println("✅ System initialized successfully")
	log.Printf("🌐 API listening on :%s", cfg.Port)
	log.Printf("🛡️ Store policy: %s", bootstrap.StorePolicy(cfg.StorePolicy))
	if cfg.SlackEnabled() {
		log.Printf("💬 Slack: listening for ideas in session %s", cfg.SlackSessionID)
	}
	log.Println("")
	log.Println("Server is running. Press Ctrl+C to stop...")

	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
}

// setupSlack wires channel intake, mention commands and phase announcements
// for the configured session.
func setupSlack(ctx context.Context, cfg *config.Config, hub *session.Hub, submissions *submission.Channel) (http.Handler, error) {
	client, err := slackpkg.NewClient(cfg.SlackToken)
	if err != nil {
		return nil, err
	}

	ctl := hub.Get(cfg.SlackSessionID)
	commands := slackpkg.NewCommandHandler(client, ctl)
	messages := slackpkg.NewMessageHandler(client, submissions, commands, cfg.SlackSessionID, cfg.SlackChannelID)

	var announcer *slackpkg.Announcer
	if cfg.SlackChannelID != "" {
		announcer = slackpkg.NewAnnouncer(client, ctl, cfg.SlackChannelID, cfg.SlackAdminUsers)
		go announcer.Run(ctx)
	}
	return slackpkg.NewServer(messages, announcer, cfg.SlackSigningSecret), nil
}
