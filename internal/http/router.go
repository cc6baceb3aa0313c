package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/execudex-backend/internal/http/handlers"
	httpMW "github.com/yungbote/execudex-backend/internal/http/middleware"
	"github.com/yungbote/execudex-backend/internal/observability"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	QuotaHandler      *httpH.QuotaHandler
	ProfileHandler    *httpH.ProfileHandler
	NavigationHandler *httpH.NavigationHandler
	HistoryHandler    *httpH.HistoryHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Quota
		if cfg.QuotaHandler != nil {
			protected.POST("/quota/check", cfg.QuotaHandler.CheckAccess)
			protected.GET("/quota/usage", cfg.QuotaHandler.Usage)
		}

		// Profiles
		if cfg.ProfileHandler != nil {
			protected.GET("/profiles/:kind/:id", cfg.ProfileHandler.GetProfile)
			protected.GET("/profiles/:kind/:id/lock", cfg.ProfileHandler.LockStatus)
			protected.POST("/profiles/:kind/:id/readiness", cfg.ProfileHandler.EnsureReady)
			protected.POST("/politicians/:id/metrics", cfg.ProfileHandler.GenerateMetrics)
		}

		// Navigation
		if cfg.NavigationHandler != nil {
			protected.POST("/navigate/cancel", cfg.NavigationHandler.Cancel)
			protected.POST("/navigate/:kind", cfg.NavigationHandler.Navigate)
		}

		// History
		if cfg.HistoryHandler != nil {
			protected.GET("/history", cfg.HistoryHandler.List)
			protected.DELETE("/history", cfg.HistoryHandler.Clear)
		}
	}

	return r
}
