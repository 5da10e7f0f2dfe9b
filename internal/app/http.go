package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/http"
	httpH "github.com/yungbote/careerladder-backend/internal/http/handlers"
	httpMW "github.com/yungbote/careerladder-backend/internal/http/middleware"
	"github.com/yungbote/careerladder-backend/internal/observability"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type Middleware struct {
	Auth    *httpMW.AuthMiddleware
	Limiter httpMW.Limiter
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Catalog     *httpH.CatalogHandler
	Survey      *httpH.SurveyHandler
	Thread      *httpH.ThreadHandler
	Progression *httpH.ProgressionHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Catalog:     httpH.NewCatalogHandler(log, services.Catalog),
		Survey:      httpH.NewSurveyHandler(log, services.Survey, services.Review),
		Thread:      httpH.NewThreadHandler(log, services.Thread),
		Progression: httpH.NewProgressionHandler(log, services.Progression),
	}
}

func wireMiddleware(log *logger.Logger, services Services, clients Clients) Middleware {
	log.Info("Wiring middleware...")
	var limiter httpMW.Limiter = httpMW.NewMemoryLimiter()
	if clients.Redis != nil {
		limiter = httpMW.NewRedisLimiter(clients.Redis, log)
	}
	return Middleware{
		Auth:    httpMW.NewAuthMiddleware(log, services.Auth),
		Limiter: limiter,
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.OtelServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        serviceName,
		CORSOrigins:        cfg.CORSOrigins,
		AuthMiddleware:     middleware.Auth,
		Limiter:            middleware.Limiter,
		RateLimit:          cfg.RateLimit,
		RateWindow:         cfg.RateWindow,
		HealthHandler:      handlers.Health,
		CatalogHandler:     handlers.Catalog,
		SurveyHandler:      handlers.Survey,
		ThreadHandler:      handlers.Thread,
		ProgressionHandler: handlers.Progression,
	})
}
