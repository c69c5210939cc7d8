package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/routinely/tracker/internal/api/handler"
	"github.com/routinely/tracker/internal/api/middleware"
	"github.com/routinely/tracker/internal/core/ports"
)

// Dependencies are the services and settings the HTTP surface is built from.
type Dependencies struct {
	Auth          ports.AuthService
	Items         ports.ItemService
	Notifications ports.NotificationService
	Accounts      ports.AccountService

	// Readiness checks by dependency name, reported by /health/ready.
	Readiness map[string]handler.PingFunc

	// RateLimit is the sustained requests per second allowed per client IP;
	// zero disables the throttle.
	RateLimit    float64
	RateBurst    int
	SecureCookie bool

	// Registry receives the HTTP metrics and backs /metrics. Nil uses the
	// process-wide default registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "tracker",
		Registerer: registerer,
	}))
	if deps.RateLimit > 0 {
		e.Use(rateLimiter(deps.RateLimit, deps.RateBurst))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.SecureCookie)
	taskHandler := handler.NewTaskHandler(deps.Items)
	routineHandler := handler.NewRoutineHandler(deps.Items)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	adminHandler := handler.NewAdminHandler(deps.Accounts)
	session := middleware.Session(deps.Auth, deps.Log)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Signed-in user routes ---
	user := e.Group("/api", session)
	user.GET("/me", authHandler.Me)
	user.PUT("/me/profile", authHandler.UpdateProfile)
	user.PUT("/me/password", authHandler.ChangePassword)
	user.GET("/dashboard", taskHandler.Dashboard)

	user.GET("/tasks", taskHandler.List)
	user.POST("/tasks", taskHandler.Create)
	user.PUT("/tasks/:id", taskHandler.Update)
	user.POST("/tasks/:id/toggle", taskHandler.Toggle)
	user.DELETE("/tasks/:id", taskHandler.Delete)

	user.GET("/routines", routineHandler.List)
	user.POST("/routines", routineHandler.Create)
	user.POST("/routines/:id/toggle", routineHandler.Toggle)
	user.DELETE("/routines/:id", routineHandler.Delete)
	user.POST("/routines/:id/executions", routineHandler.LogExecution)

	user.GET("/notifications", notificationHandler.Check)
	user.POST("/notifications/:id/seen", notificationHandler.MarkSeen)

	// --- Admin routes ---
	admin := e.Group("/admin", session, middleware.RequireAdmin(deps.Accounts, deps.Log))
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/password", adminHandler.ChangePassword)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/audit", adminHandler.Audit)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// rateLimiter throttles each client IP with a token bucket.
func rateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/health/ready" || c.Path() == "/metrics"
		},
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(
			echomiddleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(perSecond),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, handler.ErrorResponse{Error: "unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, handler.ErrorResponse{Error: "rate limit exceeded"})
		},
	})
}
