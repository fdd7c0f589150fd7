package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/cargo-transport-api/docs"
	"github.com/99minutos/cargo-transport-api/internal/api/handler"
	"github.com/99minutos/cargo-transport-api/internal/api/middleware"
	"github.com/99minutos/cargo-transport-api/internal/core/ports"
)

const metricsSubsystem = "cargo"

// Deps carries everything the HTTP layer needs. Services are built in main.
type Deps struct {
	Auth   ports.AuthService
	Cargo  ports.CargoService
	Logger zerolog.Logger

	// HealthChecks are probed by GET /health/ready, keyed by dependency name.
	HealthChecks map[string]handler.HealthCheck

	// MetricsRegistry receives the HTTP request metrics and backs /metrics.
	// Nil means the Prometheus default registry.
	MetricsRegistry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.MetricsRegistry != nil {
		registerer, gatherer = d.MetricsRegistry, d.MetricsRegistry
	}

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth)
	cargoHandler := handler.NewCargoHandler(d.Cargo, d.Logger.With().Str("component", "cargo_handler").Logger())
	healthHandler := handler.NewHealthHandler(d.HealthChecks)
	authMiddleware := middleware.Auth(d.Auth)

	// --- Public routes ---
	e.GET("/", handler.Welcome)
	e.GET("/health", healthHandler.Liveness)        // liveness
	e.GET("/health/ready", healthHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/token", authHandler.Token)
	e.GET("/secure-endpoint", authHandler.Secure, authMiddleware)

	// --- Cargo routes (bearer token required) ---
	cargo := e.Group("/cargo", authMiddleware)
	cargo.POST("/packages", cargoHandler.CreatePackage)
	cargo.GET("/report", cargoHandler.Report)

	return e
}

// requestLogger feeds echo's request log into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			var ev *zerolog.Event
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Status >= 400:
				ev = log.Warn()
			default:
				ev = log.Info()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
