package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/data/aggregates"
	"github.com/yungbote/careerladder-backend/internal/data/repos"
	repotest "github.com/yungbote/careerladder-backend/internal/data/repos/testutil"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
)

type stack struct {
	db *gorm.DB

	threadRepo repos.SkillThreadRepo
	subs       repos.SurveySubmissionRepo
	msgs       repos.ThreadMessageRepo

	surveyAgg domainagg.SurveyAggregate
	threadAgg domainagg.SkillThreadAggregate

	catalog     CatalogService
	surveys     SurveyService
	reviews     ReviewService
	threads     ThreadService
	progression ProgressionService
}

func newStack(t *testing.T, runner aggregates.TxRunner) *stack {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	base := aggregates.BaseDeps{
		DB:     db,
		Log:    log,
		Runner: runner,
		Now:    repotest.Clock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)),
	}

	maps := repos.NewCareerMapRepo(db, log)
	levels := repos.NewCareerLevelRepo(db, log)
	skills := repos.NewCareerSkillRepo(db, log)
	kpis := repos.NewKPIDefinitionRepo(db, log)
	subs := repos.NewSurveySubmissionRepo(db, log)
	reviews := repos.NewSurveySkillReviewRepo(db, log)
	events := repos.NewSurveyReviewEventRepo(db, log)
	acq := repos.NewSkillAcquisitionRepo(db, log)
	threadRepo := repos.NewSkillThreadRepo(db, log)
	msgs := repos.NewThreadMessageRepo(db, log)

	surveyAgg := aggregates.NewSurveyAggregate(aggregates.SurveyAggregateDeps{
		Base: base, Maps: maps, Levels: levels, Skills: skills,
		Submissions: subs, Reviews: reviews, Events: events,
	})
	threadAgg := aggregates.NewSkillThreadAggregate(aggregates.SkillThreadAggregateDeps{
		Base: base, Maps: maps, Skills: skills, Submissions: subs,
		Threads: threadRepo, Messages: msgs, Acquisitions: acq,
	})

	surveys := NewSurveyService(db, log, maps, levels, skills, subs, reviews, events, surveyAgg)
	return &stack{
		db:         db,
		threadRepo: threadRepo,
		subs:       subs,
		msgs:       msgs,
		surveyAgg:  surveyAgg,
		threadAgg:  threadAgg,
		catalog:    NewCatalogService(db, log, maps, levels, skills, kpis, threadAgg),
		surveys:    surveys,
		reviews:    NewReviewService(db, log, maps, subs, reviews, surveyAgg, surveys),
		threads:    NewThreadService(db, log, maps, subs, threadRepo, msgs, threadAgg),
		progression: NewProgressionService(db, log, ProgressionServiceDeps{
			Maps: maps, Levels: levels, Skills: skills, KPIs: kpis,
			Submissions: subs, Reviews: reviews, Acquisitions: acq,
			Threads: threadRepo, Messages: msgs,
		}),
	}
}

func actor(role identity.Role, companyID uuid.UUID) identity.Actor {
	return identity.Actor{ID: uuid.New(), Role: role, CompanyID: companyID}
}

// answers builds wire answers for every skill, marking the given ones mastered.
func answers(skills []*types.CareerSkill, mastered ...uuid.UUID) map[string]string {
	m := map[uuid.UUID]bool{}
	for _, id := range mastered {
		m[id] = true
	}
	out := map[string]string{}
	for _, s := range skills {
		v := string(progression.ConfidenceVeryConfident)
		if m[s.ID] {
			v = string(progression.ConfidenceMastered)
		}
		out[s.ID.String()] = v
	}
	return out
}

func requireCode(t *testing.T, err error, code domainagg.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !domainagg.IsCode(err, code) {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}
