package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/config"
	"github.com/address-data-service/internal/delivery/http/handler"
	"github.com/address-data-service/internal/delivery/http/middleware"
	"github.com/address-data-service/internal/pkg/errors"
	"github.com/address-data-service/internal/pkg/utils"
)

// HealthCheck - проверка зависимости для /health
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	documentHandler *handler.DocumentHandler
	healthChecks    []HealthCheck
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	documentHandler *handler.DocumentHandler,
	healthChecks ...HealthCheck,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:     "Address Data Service",
		ReadTimeout: 10 * time.Second,
		// Без WriteTimeout: POST /documents/seed отвечает только после обхода всех городов
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:             app,
		config:          cfg,
		logger:          logger,
		documentHandler: documentHandler,
		healthChecks:    healthChecks,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - доступ к fiber.App (используется в тестах)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.Env))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	if s.config.Metrics.Enabled {
		s.app.Get(s.config.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := s.app.Group("/api/v1")

	api.Get("/health", s.health)

	documents := api.Group("/documents")
	documents.Post("/seed", s.documentHandler.Seed)
	documents.Post("/:areaId", s.documentHandler.AddCity)
	documents.Get("/:areaId", s.documentHandler.GetDocument)
	documents.Get("/", s.documentHandler.ListDocuments)
}

// health godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/health [get]
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "healthy"
	checks := make(fiber.Map, len(s.healthChecks))
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("dependency", hc.Name), zap.Error(err))
			checks[hc.Name] = err.Error()
			status = "degraded"
			continue
		}
		checks[hc.Name] = "ok"
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": checks,
		"time":   time.Now(),
	})
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		appErr := errors.ErrInternalServer
		if code != fiber.StatusInternalServerError {
			appErr = errors.New("HTTP_ERROR", err.Error(), code)
		}

		return c.Status(code).JSON(utils.ErrorResponse{Error: appErr})
	}
}
