package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/data/aggregates"
	"github.com/yungbote/careerladder-backend/internal/data/repos"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/career"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

// SubmissionView is a submission with its review rows and decision history.
type SubmissionView struct {
	*types.SurveySubmission
	History []*types.SurveyReviewEvent `json:"history"`
}

type SurveyService interface {
	Template(ctx context.Context, actor identity.Actor, scope progression.Scope) (*progression.Template, error)
	// Submit takes answers keyed by skill id string, as they arrive over the wire.
	Submit(ctx context.Context, actor identity.Actor, scope progression.Scope, answers map[string]string) (*SubmissionView, error)
	// Latest returns nil when the subject has never submitted for the scope.
	Latest(ctx context.Context, actor identity.Actor, subjectID uuid.UUID, scope progression.Scope) (*SubmissionView, error)
	Get(ctx context.Context, actor identity.Actor, submissionID uuid.UUID) (*SubmissionView, error)
}

type surveyService struct {
	db          *gorm.DB
	log         *logger.Logger
	maps        repos.CareerMapRepo
	levels      repos.CareerLevelRepo
	skills      repos.CareerSkillRepo
	submissions repos.SurveySubmissionRepo
	reviews     repos.SurveySkillReviewRepo
	events      repos.SurveyReviewEventRepo
	agg         domainagg.SurveyAggregate
}

func NewSurveyService(
	db *gorm.DB,
	log *logger.Logger,
	maps repos.CareerMapRepo,
	levels repos.CareerLevelRepo,
	skills repos.CareerSkillRepo,
	submissions repos.SurveySubmissionRepo,
	reviews repos.SurveySkillReviewRepo,
	events repos.SurveyReviewEventRepo,
	agg domainagg.SurveyAggregate,
) SurveyService {
	return &surveyService{
		db:          db,
		log:         log.With("service", "SurveyService"),
		maps:        maps,
		levels:      levels,
		skills:      skills,
		submissions: submissions,
		reviews:     reviews,
		events:      events,
		agg:         agg,
	}
}

func (s *surveyService) Template(ctx context.Context, actor identity.Actor, scope progression.Scope) (*progression.Template, error) {
	const op = "Survey.Template"
	if !scope.Valid() {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonMissingScope, "scope must be a map or a level")
	}
	dbc := dbctx.Context{Ctx: ctx}
	mapID, skills, err := aggregates.ResolveScope(dbc, s.maps, s.levels, s.skills, actor, scope)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	levels, err := s.levels.ListByMap(dbc, mapID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return BuildTemplate(scope, mapID, levels, skills), nil
}

// BuildTemplate orders questions by level number, then skill position.
func BuildTemplate(scope progression.Scope, mapID uuid.UUID, levels []*types.CareerLevel, skills []*types.CareerSkill) *progression.Template {
	career.SortLevels(levels)
	byLevel := map[uuid.UUID][]*types.CareerSkill{}
	for _, sk := range skills {
		byLevel[sk.LevelID] = append(byLevel[sk.LevelID], sk)
	}
	tpl := &progression.Template{Scope: scope, MapID: mapID, Questions: []progression.Question{}}
	for _, lvl := range levels {
		ls := byLevel[lvl.ID]
		career.SortSkills(ls)
		for _, sk := range ls {
			tpl.Questions = append(tpl.Questions, progression.Question{
				SkillID:     sk.ID,
				LevelID:     lvl.ID,
				LevelNumber: lvl.LevelNumber,
				Title:       sk.Title,
				Prompt:      fmt.Sprintf("How confident are you in %q?", sk.Title),
				Options:     progression.Options(),
			})
		}
	}
	return tpl
}

func (s *surveyService) Submit(ctx context.Context, actor identity.Actor, scope progression.Scope, raw map[string]string) (*SubmissionView, error) {
	const op = "Survey.Submit"
	answers := make(map[uuid.UUID]progression.Confidence, len(raw))
	var badKeys, badValues []string
	for k, v := range raw {
		id, err := uuid.Parse(strings.TrimSpace(k))
		if err != nil {
			badKeys = append(badKeys, k)
			continue
		}
		c, ok := progression.ParseConfidence(v)
		if !ok {
			badValues = append(badValues, id.String())
			continue
		}
		answers[id] = c
	}
	if len(badKeys) > 0 {
		sort.Strings(badKeys)
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonUnknownSkill, "answer keys must be skill ids", badKeys...)
	}
	if len(badValues) > 0 {
		sort.Strings(badValues)
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonInvalidAnswer, "answers must use one of the confidence options", badValues...)
	}

	sub, err := s.agg.Submit(ctx, domainagg.SubmitSurveyInput{Actor: actor, Scope: scope, Answers: answers})
	if err != nil {
		return nil, err
	}
	s.log.Info("survey submitted", "submission", sub.ID, "subject_id", sub.SubjectID, "scope", scope.String(), "status", sub.Status, "claimed", len(sub.ClaimedSkillIDs))
	return s.Get(ctx, actor, sub.ID)
}

func (s *surveyService) Latest(ctx context.Context, actor identity.Actor, subjectID uuid.UUID, scope progression.Scope) (*SubmissionView, error) {
	const op = "Survey.Latest"
	if subjectID == uuid.Nil {
		subjectID = actor.ID
	}
	if !actor.CanView(subjectID) {
		return nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonNotOwner, "students only see their own surveys")
	}
	if !scope.Valid() {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonMissingScope, "scope must be a map or a level")
	}
	dbc := dbctx.Context{Ctx: ctx}
	sub, err := s.submissions.GetLatest(dbc, subjectID, scope)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if sub == nil {
		return nil, nil
	}
	return s.view(dbc, op, sub)
}

func (s *surveyService) Get(ctx context.Context, actor identity.Actor, submissionID uuid.UUID) (*SubmissionView, error) {
	const op = "Survey.Get"
	dbc := dbctx.Context{Ctx: ctx}
	sub, err := s.submissions.GetByID(dbc, submissionID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if sub == nil || !actor.CanView(sub.SubjectID) {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("submission not found: %s", submissionID), nil)
	}
	return s.view(dbc, op, sub)
}

func (s *surveyService) view(dbc dbctx.Context, op string, sub *types.SurveySubmission) (*SubmissionView, error) {
	reviews, err := s.reviews.ListBySubmission(dbc, sub.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	sub.Attach(reviews)
	history, err := s.events.ListBySubmission(dbc, sub.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if history == nil {
		history = []*types.SurveyReviewEvent{}
	}
	return &SubmissionView{SurveySubmission: sub, History: history}, nil
}
