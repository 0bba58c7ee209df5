package server

import (
	"fmt"

	"ozon-order-bot/internal/core/logger"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// Server holds the Fiber application serving the local status endpoints.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// port is the listen port.
	port int
}

// New creates a new Server instance with configured middleware.
func New(port int) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "ozon-order-bot",
	})

	app.Use(requestid.New())

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
	}))

	return &Server{
		App:  app,
		port: port,
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.port)
	logger.Get().Info("Starting status server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
