package server

import (
	"chat-room/services"
	"context"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shirou/gopsutil/process"
)

const identityHeader = "User"

// Server exposes the chat service over HTTP.
type Server struct {
	app         *fiber.App
	log         *slog.Logger
	chatService services.IChatService
	self        *process.Process
}

func NewServer(log *slog.Logger, chatService services.IChatService) *Server {
	s := &Server{log: log, chatService: chatService}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		s.self = p
	} else {
		log.Warn("Process stats unavailable", "error", err)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "chat-room",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type," + identityHeader,
	}))
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.Health)

	s.app.Post("/participants", s.CreateParticipant)
	s.app.Get("/participants", s.ListParticipants)

	s.app.Post("/messages", s.PostMessage)
	s.app.Get("/messages", s.ListMessages)
	s.app.Put("/messages/:id", s.UpdateMessage)
	s.app.Delete("/messages/:id", s.DeleteMessage)

	s.app.Post("/status", s.Heartbeat)
}

// App gives access to the underlying fiber application, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks until the server stops.
func (s *Server) Listen(addr string) error {
	s.log.Info("HTTP server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler catches errors returned by fiber itself (unknown route, bad method, recovered panic).
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else {
		s.log.Error("Unhandled HTTP error", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: message, Message: message})
}
