// Package api is the HTTP surface: the AI proxy, participant intake, the
// admin console backend, the live state websocket and Slack events.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/shubh-37/idea-processor/internal/gate"
	"github.com/shubh-37/idea-processor/internal/session"
	"github.com/shubh-37/idea-processor/internal/store"
	"github.com/shubh-37/idea-processor/internal/submission"
)

const (
	BodyLimit     = 1 << 20
	RateLimit     = 100
	RateWindow    = 15 * time.Minute
	healthMessage = "Exact Idea Processor API is running"
)

// Deps are the components the routes call into. Slack and Metrics may be nil.
type Deps struct {
	AI          session.Generator
	Hub         *session.Hub
	Store       store.Store
	Gate        *gate.Gate
	Codes       *gate.Registry
	Admin       *gate.AdminAuth
	Submissions *submission.Channel
	Slack       http.Handler
	Backlog     BacklogExporter
	Metrics     *Metrics

	AllowedOrigins []string
	// Debug puts internal error text in 500 responses
	Debug bool
	// RateLimit overrides the per-IP request budget on /api
	RateLimit int
}

type Server struct {
	deps     Deps
	app      *fiber.App
	validate *validator.Validate
	debug    bool
}

func NewServer(deps Deps) *Server {
	s := &Server{
		deps:     deps,
		validate: validator.New(),
		debug:    deps.Debug,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "Exact Idea Processor",
		ErrorHandler:          s.errorHandler,
		BodyLimit:             BodyLimit,
		ReadTimeout:           10 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// App exposes the fiber app, mainly for app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())

	s.app.Use(logger.New(logger.Config{
		Format:     "${time} ${status} ${method} ${path} ${latency}\n",
		TimeFormat: time.RFC3339,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/health" || c.Path() == "/metrics"
		},
	}))

	if s.deps.Metrics != nil {
		s.app.Use(s.deps.Metrics.Middleware())
	}

	origins := "*"
	if len(s.deps.AllowedOrigins) > 0 {
		origins = strings.Join(s.deps.AllowedOrigins, ",")
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization,X-Device-ID",
	}))
}

func (s *Server) setupRoutes() {
	if s.deps.Metrics != nil {
		s.app.Get("/metrics", s.deps.Metrics.Handler())
	}
	if s.deps.Slack != nil {
		s.app.Post("/slack/events", adaptor.HTTPHandler(s.deps.Slack))
	}

	max := s.deps.RateLimit
	if max <= 0 {
		max = RateLimit
	}
	api := s.app.Group("/api")
	api.Use(limiter.New(limiter.Config{
		Max:        max,
		Expiration: RateWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorBody{Error: "Too many requests, please try again later."})
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/health"
		},
	}))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString(healthMessage)
	})

	api.Post("/analyze", s.analyze)
	api.Post("/generate-details", s.generateDetails)
	api.Post("/generate-blog", s.generateBlog)
	api.Post("/generate-press-release", s.generatePressRelease)
	api.Post("/cluster-ideas", s.clusterIdeas)
	api.Post("/chat", s.chat)
	api.Post("/generate-follow-up-question", s.generateFollowUpQuestion)
	api.Post("/generate-slides", s.generateSlides)

	sessions := api.Group("/sessions")
	sessions.Post("/access", s.access)
	sessions.Post("/:id/ideas", s.submitIdea)
	sessions.Get("/:id/status", s.sessionStatus)

	admin := api.Group("/admin")
	admin.Post("/login", s.login)

	protected := admin.Group("/sessions", s.requireAdmin)
	protected.Get("/", s.listSessions)
	ctl := protected.Group("/:id")
	ctl.Get("/", s.state)
	ctl.Post("/setup", s.control(s.setupSession))
	ctl.Put("/context", s.control(s.setContext))
	ctl.Put("/default-context", s.control(s.saveDefaultContext))
	ctl.Post("/start", s.control(s.startSession))
	ctl.Post("/stop", s.control(s.stopSession))
	ctl.Post("/cancel", s.control(s.cancelSession))
	ctl.Post("/reset", s.control(s.resetSession))
	ctl.Post("/code", s.assignCode)
	ctl.Post("/analysis/retry", s.control(s.retryAnalysis))
	ctl.Post("/choose", s.control(s.chooseIdea))
	ctl.Post("/reveal", s.control(s.startReveal))
	ctl.Post("/reveal/confirm", s.control(s.confirmReveal))
	ctl.Post("/manual", s.control(s.selectManual))
	ctl.Post("/clusters", s.control(s.clusterSession))
	ctl.Post("/clusters/:clusterId/select", s.control(s.selectCluster))
	ctl.Post("/select", s.control(s.selectIdea))
	ctl.Put("/tab", s.control(s.setTab))
	ctl.Post("/blog", s.control(s.sessionBlog))
	ctl.Post("/press-release", s.control(s.sessionPressRelease))
	ctl.Post("/slides", s.control(s.sessionSlides))
	ctl.Post("/chat", s.control(s.sessionChat))
	ctl.Post("/follow-up-question", s.control(s.sessionFollowUpQuestion))
	ctl.Post("/follow-up", s.control(s.startFollowUp))
	ctl.Post("/back", s.control(s.backToAnalysis))

	ctl.Get("/reports", s.listReports)
	ctl.Post("/reports", s.buildReport)
	ctl.Get("/reports/:reportId", s.downloadReport)
	ctl.Get("/backlog.:format", s.downloadBacklog)
	ctl.Post("/backlog/linear", s.exportBacklog)

	ws := s.app.Group("/ws", s.upgradeOnly)
	ws.Get("/sessions/:id", s.requireAdminQuery, s.knownSession, websocket.New(s.streamState))
}

// bind decodes the JSON body into v and runs its validate tags
func (s *Server) bind(c *fiber.Ctx, v any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(v); err != nil {
			return badRequest("Invalid request body")
		}
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return newHTTPError(fiber.StatusBadRequest, "Validation failed", validationMessage(verrs[0]))
		}
		return badRequest("Invalid request body")
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	}
	return fe.Field() + " is invalid"
}
