package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"keywordlens/internal/config"
	"keywordlens/internal/handler"
	"keywordlens/pkg/history"
	"keywordlens/pkg/i18n"
	"keywordlens/pkg/logger"
	"keywordlens/pkg/provider"
)

// Server owns the fiber app and its collaborators.
type Server struct {
	app    *fiber.App
	config config.ServerConfig
	store  *history.MemoryStore
	log    *logger.Logger
}

// New wires the provider client, history store and handlers into a fiber
// app with recovery, locale negotiation and request logging middleware.
func New(cfg *config.Config) (*Server, error) {
	client, err := provider.NewClient(provider.Config{
		Endpoints:  cfg.Provider.Endpoints,
		APIKey:     cfg.Provider.APIKey,
		Timeout:    time.Duration(cfg.Provider.TimeoutMs) * time.Millisecond,
		MaxRetries: cfg.Provider.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create provider client: %w", err)
	}

	store, err := history.NewMemoryStore(cfg.History.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create history store: %w", err)
	}

	s := &Server{
		config: cfg.Server,
		store:  store,
		log:    logger.GetLogger().Component("server"),
	}
	s.app = s.buildApp(handler.New(client, store, handler.Config{MaxExportRows: cfg.Export.MaxRows}))
	return s, nil
}

// NewWithClient is the test seam: same wiring, injected provider client.
func NewWithClient(client provider.Client, store *history.MemoryStore, maxExportRows int) *Server {
	s := &Server{
		store: store,
		log:   logger.GetLogger().Component("server"),
	}
	s.app = s.buildApp(handler.New(client, store, handler.Config{MaxExportRows: maxExportRows}))
	return s
}

func (s *Server) buildApp(h *handler.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "keywordlens",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(s.localeMiddleware)
	app.Use(s.requestLogger)

	api := app.Group("/api")
	api.Post("/keywords/:analysis", h.Keywords)
	api.Get("/analysis/history", h.History)
	api.Post("/serp/onpage-audit", h.StartAudit)
	api.Get("/serp/task/:id", h.TaskProgress)
	api.Get("/user-settings", h.Settings)
	api.Put("/user-settings", h.UpdateSettings)
	api.Post("/export", h.Export)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app
}

// localeMiddleware resolves the request locale once; the cookie wins over
// the Accept-Language header.
func (s *Server) localeMiddleware(c *fiber.Ctx) error {
	c.Locals("locale", i18n.Negotiate(c.Cookies("locale"), c.Get(fiber.HeaderAcceptLanguage)))
	return c.Next()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.log.WithFields(map[string]interface{}{
		"method":      c.Method(),
		"path":        c.Path(),
		"status":      c.Response().StatusCode(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Request handled")
	return err
}

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.log.WithField("addr", addr).Info("Starting HTTP server")
	return s.app.Listen(addr)
}

// Shutdown stops the listener and releases the history store.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.store.Close()
	return err
}

// App exposes the fiber app for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}
