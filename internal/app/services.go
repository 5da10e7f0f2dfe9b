package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/observability"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
	"github.com/yungbote/careerladder-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Catalog     services.CatalogService
	Survey      services.SurveyService
	Review      services.ReviewService
	Thread      services.ThreadService
	Progression services.ProgressionService

	SurveyAggregate      domainagg.SurveyAggregate
	SkillThreadAggregate domainagg.SkillThreadAggregate

	ThreadSweeper *services.ThreadSweeper
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	base := aggregates.BaseDeps{
		DB:  db,
		Log: log,
		Hooks: aggregates.MultiHooks(
			aggregates.NewObservabilityHooks(metrics),
			aggregates.NewLogHooks(log, cfg.AggregateSlowWrite),
		),
	}
	surveyAgg := aggregates.NewSurveyAggregate(aggregates.SurveyAggregateDeps{
		Base:        base,
		Maps:        r.CareerMap,
		Levels:      r.CareerLevel,
		Skills:      r.CareerSkill,
		Submissions: r.SurveySubmission,
		Reviews:     r.SurveySkillReview,
		Events:      r.SurveyReviewEvent,
	})
	threadAgg := aggregates.NewSkillThreadAggregate(aggregates.SkillThreadAggregateDeps{
		Base:         base,
		Maps:         r.CareerMap,
		Skills:       r.CareerSkill,
		Submissions:  r.SurveySubmission,
		Threads:      r.SkillThread,
		Messages:     r.ThreadMessage,
		Acquisitions: r.SkillAcquisition,
	})

	surveySvc := services.NewSurveyService(db, log, r.CareerMap, r.CareerLevel, r.CareerSkill,
		r.SurveySubmission, r.SurveySkillReview, r.SurveyReviewEvent, surveyAgg)

	return Services{
		Auth:    services.NewAuthService(log, cfg.JWTSecretKey, cfg.JWTIssuer),
		Catalog: services.NewCatalogService(db, log, r.CareerMap, r.CareerLevel, r.CareerSkill, r.KPIDefinition, threadAgg),
		Survey:  surveySvc,
		Review:  services.NewReviewService(db, log, r.CareerMap, r.SurveySubmission, r.SurveySkillReview, surveyAgg, surveySvc),
		Thread:  services.NewThreadService(db, log, r.CareerMap, r.SurveySubmission, r.SkillThread, r.ThreadMessage, threadAgg),
		Progression: services.NewProgressionService(db, log, services.ProgressionServiceDeps{
			Maps:         r.CareerMap,
			Levels:       r.CareerLevel,
			Skills:       r.CareerSkill,
			KPIs:         r.KPIDefinition,
			Submissions:  r.SurveySubmission,
			Reviews:      r.SurveySkillReview,
			Acquisitions: r.SkillAcquisition,
			Threads:      r.SkillThread,
			Messages:     r.ThreadMessage,
		}),
		SurveyAggregate:      surveyAgg,
		SkillThreadAggregate: threadAgg,
		ThreadSweeper: services.NewThreadSweeper(log, threadAgg, metrics, services.ThreadSweeperConfig{
			Spec:      cfg.SweeperSpec,
			IdleAfter: cfg.ThreadIdleTimeout,
			BatchSize: cfg.SweeperBatch,
		}),
	}
}
