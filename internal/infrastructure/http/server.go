package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	handlers "github.com/wekeepgrowing/ott-entitlement/internal/adapter/handler/http"
	"github.com/wekeepgrowing/ott-entitlement/internal/config"
	"github.com/wekeepgrowing/ott-entitlement/internal/middleware/auth"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

// Handlers groups the HTTP adapters mounted by the server.
type Handlers struct {
	Subscription *handlers.SubscriptionHandler
	Admin        *handlers.AdminHandler
	Content      *handlers.ContentHandler
	Device       *handlers.DeviceHandler
	Webhook      *handlers.WebhookHandler
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
}

// NewServer builds the echo instance and mounts every route. reg receives the HTTP request
// metrics and backs /metrics.
func NewServer(cfg *config.Config, log *zap.Logger, h Handlers, reg *prometheus.Registry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()
	logger.WithEchoLogger(e, log)

	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins(cfg.Service.ClientURL),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, auth.DeviceHeader, handlers.CountryHeader},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "entitlement",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	s := &Server{
		config: cfg,
		logger: log,
		echo:   e,
	}
	s.setupRoutes(h, reg)
	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupRoutes(h Handlers, reg *prometheus.Registry) {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})
	s.echo.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))

	jwtConfig := auth.JWTConfig{
		Secret:    s.config.JWT.Secret,
		Logger:    s.logger,
		SkipPaths: s.config.JWT.SkipPaths,
	}

	v1 := s.echo.Group("/api/v1")

	// Catalog browsing is public; availability depends only on country.
	v1.GET("/channels/:channelId/contents", h.Content.ListChannelContents)

	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))

	subscriptions := protected.Group("/subscriptions")
	subscriptions.POST("", h.Subscription.CreateOrder)
	subscriptions.POST("/confirm", h.Subscription.ConfirmPayment)
	protected.GET("/entitlements/check", h.Subscription.CheckEntitlement)

	protected.GET("/contents/:id", h.Content.GetContent)
	protected.POST("/contents/:id/play", h.Content.PlayContent)

	protected.PUT("/devices", h.Device.UpdateDevice)
	protected.GET("/devices/validate", h.Device.ValidateDevice)

	admin := protected.Group("/admin", auth.RequireRole(s.config.JWT.AdminRole, s.logger))
	admin.POST("/grants", h.Admin.Grant)
	admin.POST("/refunds", h.Admin.Refund)
	admin.DELETE("/entitlements/:id", h.Admin.RemoveEntitlement)
	admin.POST("/views/reset/:period", h.Admin.ResetViews)
	admin.GET("/audit-logs", h.Admin.ListAuditLogs)

	// Gateway webhooks authenticate by signature, outside API versioning
	s.echo.POST("/webhooks/payment", h.Webhook.HandleWebhook)
}

func allowOrigins(clientURL string) []string {
	if clientURL == "" {
		return []string{"*"}
	}
	return []string{clientURL}
}
