package aggregates

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/data/repos"
	repotest "github.com/yungbote/careerladder-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
)

type testEnv struct {
	db      *gorm.DB
	now     func() time.Time
	base    BaseDeps
	surveys domainagg.SurveyAggregate
	threads domainagg.SkillThreadAggregate

	maps         repos.CareerMapRepo
	skills       repos.CareerSkillRepo
	submissions  repos.SurveySubmissionRepo
	skillThreads repos.SkillThreadRepo
	messages     repos.ThreadMessageRepo
	acquisitions repos.SkillAcquisitionRepo
	events       repos.SurveyReviewEventRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	now := repotest.Clock(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))
	base := BaseDeps{DB: db, Log: log, Now: now}

	maps := repos.NewCareerMapRepo(db, log)
	levels := repos.NewCareerLevelRepo(db, log)
	skills := repos.NewCareerSkillRepo(db, log)
	subs := repos.NewSurveySubmissionRepo(db, log)
	reviews := repos.NewSurveySkillReviewRepo(db, log)
	events := repos.NewSurveyReviewEventRepo(db, log)
	threadRepo := repos.NewSkillThreadRepo(db, log)
	msgRepo := repos.NewThreadMessageRepo(db, log)
	acq := repos.NewSkillAcquisitionRepo(db, log)

	return &testEnv{
		db:   db,
		now:  now,
		base: base,
		surveys: NewSurveyAggregate(SurveyAggregateDeps{
			Base: base, Maps: maps, Levels: levels, Skills: skills,
			Submissions: subs, Reviews: reviews, Events: events,
		}),
		threads: NewSkillThreadAggregate(SkillThreadAggregateDeps{
			Base: base, Maps: maps, Skills: skills, Submissions: subs,
			Threads: threadRepo, Messages: msgRepo, Acquisitions: acq,
		}),
		maps:         maps,
		skills:       skills,
		submissions:  subs,
		skillThreads: threadRepo,
		messages:     msgRepo,
		acquisitions: acq,
		events:       events,
	}
}

func student(companyID uuid.UUID) identity.Actor {
	return identity.Actor{ID: uuid.New(), Role: identity.RoleStudent, CompanyID: companyID}
}

func reviewer(role identity.Role, companyID uuid.UUID) identity.Actor {
	return identity.Actor{ID: uuid.New(), Role: role, CompanyID: companyID}
}

func requireReason(t *testing.T, err error, code domainagg.ErrorCode, reason string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s/%s, got nil", code, reason)
	}
	if !domainagg.IsCode(err, code) {
		t.Fatalf("expected code %s, got %v", code, err)
	}
	if reason != "" && !domainagg.IsReason(err, reason) {
		t.Fatalf("expected reason %s, got %v", reason, err)
	}
}
