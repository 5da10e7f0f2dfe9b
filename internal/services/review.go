package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/data/aggregates"
	"github.com/yungbote/careerladder-backend/internal/data/repos"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type ReviewService interface {
	// Decide records a reviewer decision and returns the refetched submission.
	Decide(ctx context.Context, actor identity.Actor, submissionID, skillID uuid.UUID, action, comment string) (*SubmissionView, error)
	// Pending is the reviewer work queue, oldest first, limited to the actor's company.
	Pending(ctx context.Context, actor identity.Actor, limit int) ([]*types.SurveySubmission, error)
}

type reviewService struct {
	db          *gorm.DB
	log         *logger.Logger
	maps        repos.CareerMapRepo
	submissions repos.SurveySubmissionRepo
	reviews     repos.SurveySkillReviewRepo
	agg         domainagg.SurveyAggregate
	surveys     SurveyService
}

func NewReviewService(
	db *gorm.DB,
	log *logger.Logger,
	maps repos.CareerMapRepo,
	submissions repos.SurveySubmissionRepo,
	reviews repos.SurveySkillReviewRepo,
	agg domainagg.SurveyAggregate,
	surveys SurveyService,
) ReviewService {
	return &reviewService{
		db:          db,
		log:         log.With("service", "ReviewService"),
		maps:        maps,
		submissions: submissions,
		reviews:     reviews,
		agg:         agg,
		surveys:     surveys,
	}
}

func (s *reviewService) Decide(ctx context.Context, actor identity.Actor, submissionID, skillID uuid.UUID, action, comment string) (*SubmissionView, error) {
	const op = "Review.Decide"
	decision, ok := progression.ParseAction(action)
	if !ok {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonInvalidAction, "action must be approve or reject", "action")
	}
	sub, err := s.agg.Decide(ctx, domainagg.DecideSkillInput{
		Actor:        actor,
		SubmissionID: submissionID,
		SkillID:      skillID,
		Action:       decision,
		Comment:      comment,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("survey decision recorded", "submission", sub.ID, "skill", skillID, "decision", decision, "status", sub.Status)
	return s.surveys.Get(ctx, actor, sub.ID)
}

func (s *reviewService) Pending(ctx context.Context, actor identity.Actor, limit int) ([]*types.SurveySubmission, error) {
	const op = "Review.Pending"
	if !actor.IsReviewer() {
		return nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonWrongRole, "reviewer role required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	mapIDs, err := companyMapIDs(dbc, s.maps, actor)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if mapIDs != nil && len(mapIDs) == 0 {
		return []*types.SurveySubmission{}, nil
	}
	subs, err := s.submissions.ListPending(dbc, mapIDs, limit)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	ids := make([]uuid.UUID, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ID)
	}
	byID, err := s.reviews.ListBySubmissions(dbc, ids)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	for _, sub := range subs {
		sub.Attach(byID[sub.ID])
	}
	return subs, nil
}

// companyMapIDs returns nil for an actor without a company, meaning every map.
func companyMapIDs(dbc dbctx.Context, maps repos.CareerMapRepo, actor identity.Actor) ([]uuid.UUID, error) {
	if actor.CompanyID == uuid.Nil {
		return nil, nil
	}
	rows, err := maps.List(dbc, repos.MapFilter{CompanyID: actor.CompanyID})
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.ID)
	}
	return out, nil
}
