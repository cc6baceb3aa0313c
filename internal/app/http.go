package app

import (
	"github.com/yungbote/execudex-backend/internal/config"
	"github.com/yungbote/execudex-backend/internal/http"
	httpH "github.com/yungbote/execudex-backend/internal/http/handlers"
	httpMW "github.com/yungbote/execudex-backend/internal/http/middleware"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Quota      *httpH.QuotaHandler
	Profile    *httpH.ProfileHandler
	Navigation *httpH.NavigationHandler
	History    *httpH.HistoryHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Quota:  httpH.NewQuotaHandler(services.Quota),
		Profile: httpH.NewProfileHandler(
			log,
			services.Politicians,
			services.Legislation,
			services.Locks,
			services.Prefetcher,
			services.Metrics,
			services.Quota,
		),
		Navigation: httpH.NewNavigationHandler(log, services.Navigation),
		History:    httpH.NewHistoryHandler(services.History),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Sessions),
	}
}

func wireRouterConfig(log *logger.Logger, cfg *config.Config, services Services) http.RouterConfig {
	handlers := wireHandlers(log, services)
	middleware := wireMiddleware(log, services)
	return http.RouterConfig{
		Log:               log,
		ServiceName:       cfg.Telemetry.ServiceName,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		AuthMiddleware:    middleware.Auth,
		QuotaHandler:      handlers.Quota,
		ProfileHandler:    handlers.Profile,
		NavigationHandler: handlers.Navigation,
		HistoryHandler:    handlers.History,
		HealthHandler:     handlers.Health,
	}
}
