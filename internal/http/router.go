package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	httpH "github.com/yungbote/careerladder-backend/internal/http/handlers"
	httpMW "github.com/yungbote/careerladder-backend/internal/http/middleware"
	"github.com/yungbote/careerladder-backend/internal/observability"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware
	Limiter        httpMW.Limiter
	RateLimit      int
	RateWindow     time.Duration

	HealthHandler      *httpH.HealthHandler
	CatalogHandler     *httpH.CatalogHandler
	SurveyHandler      *httpH.SurveyHandler
	ThreadHandler      *httpH.ThreadHandler
	ProgressionHandler *httpH.ProgressionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		protected.Use(httpMW.RateLimitMutations(cfg.Limiter, cfg.Metrics, cfg.RateLimit, cfg.RateWindow))

		// Catalog
		if cfg.CatalogHandler != nil {
			protected.GET("/maps", cfg.CatalogHandler.ListMaps)
			protected.GET("/maps/:id", cfg.CatalogHandler.GetMap)
			protected.POST("/maps", cfg.CatalogHandler.CreateMap)
			protected.PATCH("/maps/:id/publish", cfg.CatalogHandler.SetPublished)
			protected.POST("/maps/:id/levels", cfg.CatalogHandler.CreateLevel)
			protected.POST("/levels/:id/skills", cfg.CatalogHandler.CreateSkill)
			protected.DELETE("/skills/:id", cfg.CatalogHandler.DeleteSkill)
			protected.GET("/kpis", cfg.CatalogHandler.ListKPIs)
			protected.POST("/kpis", cfg.CatalogHandler.CreateKPI)
		}

		// Surveys + review
		if cfg.SurveyHandler != nil {
			protected.GET("/maps/:id/survey", cfg.SurveyHandler.Template(progression.ScopeMap))
			protected.POST("/maps/:id/survey", cfg.SurveyHandler.Submit(progression.ScopeMap))
			protected.GET("/maps/:id/survey/latest", cfg.SurveyHandler.Latest(progression.ScopeMap))
			protected.GET("/levels/:id/survey", cfg.SurveyHandler.Template(progression.ScopeLevel))
			protected.POST("/levels/:id/survey", cfg.SurveyHandler.Submit(progression.ScopeLevel))
			protected.GET("/levels/:id/survey/latest", cfg.SurveyHandler.Latest(progression.ScopeLevel))
			protected.GET("/surveys/pending", cfg.SurveyHandler.Pending)
			protected.GET("/surveys/:id", cfg.SurveyHandler.Get)
			protected.POST("/surveys/:id/skills/:skill_id/review", cfg.SurveyHandler.Review)
		}

		// Progression
		if cfg.ProgressionHandler != nil {
			protected.GET("/maps/:id/progress", cfg.ProgressionHandler.MapState)
			protected.GET("/levels/:id/progress", cfg.ProgressionHandler.LevelState)
		}

		// Skill threads
		if cfg.ThreadHandler != nil {
			protected.GET("/skills/:id/thread", cfg.ThreadHandler.Get)
			protected.POST("/skills/:id/thread", cfg.ThreadHandler.Request)
			protected.GET("/threads/awaiting-review", cfg.ThreadHandler.AwaitingReview)
			protected.POST("/threads/:id/messages", cfg.ThreadHandler.Message)
			protected.POST("/threads/:id/review", cfg.ThreadHandler.Review)
		}
	}

	return r
}
