// Package httpapi exposes the session workflow over HTTP.
package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pbooth01/cli2ansible/internal/application/clean"
	"github.com/pbooth01/cli2ansible/internal/application/compile"
	"github.com/pbooth01/cli2ansible/internal/application/ingest"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

// Server hosts the HTTP API on a fiber app.
type Server struct {
	app *fiber.App
}

// NewServer builds the app and registers all routes. cleanService may carry a
// nil cleaner; the clean endpoint then answers 503.
func NewServer(ingestService *ingest.Service, compileService *compile.Service, cleanService *clean.Service, log ports.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "cli2ansible",
		BodyLimit: int(ingest.DefaultMaxUploadBytes) + 1024*1024,
	})

	h := &handler{
		ingest:  ingestService,
		compile: compileService,
		clean:   cleanService,
		log:     log,
	}

	app.Get("/", h.health)
	app.Post("/sessions", h.createSession)
	app.Get("/sessions/:id", h.getSession)
	app.Post("/sessions/:id/events", h.uploadEvents)
	app.Get("/sessions/:id/events", h.listEvents)
	app.Patch("/sessions/:id/events", h.updateEventsBatch)
	app.Patch("/sessions/:id/events/:eventID", h.updateEvent)
	app.Post("/sessions/:id/cast", h.uploadCast)
	app.Post("/sessions/:id/compile", h.compileSession)
	app.Get("/sessions/:id/report", h.getReport)
	app.Get("/sessions/:id/playbook", h.downloadPlaybook)
	app.Post("/sessions/:id/clean", h.cleanSession)

	return &Server{app: app}
}

// App exposes the fiber app, mainly for tests via app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving the API on addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
