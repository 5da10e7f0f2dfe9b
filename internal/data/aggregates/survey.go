package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/data/repos"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
)

type SurveyAggregateDeps struct {
	Base BaseDeps

	Maps        repos.CareerMapRepo
	Levels      repos.CareerLevelRepo
	Skills      repos.CareerSkillRepo
	Submissions repos.SurveySubmissionRepo
	Reviews     repos.SurveySkillReviewRepo
	Events      repos.SurveyReviewEventRepo
}

type surveyAggregate struct {
	deps SurveyAggregateDeps
}

func NewSurveyAggregate(deps SurveyAggregateDeps) domainagg.SurveyAggregate {
	deps.Base = deps.Base.withDefaults()
	return &surveyAggregate{deps: deps}
}

func (a *surveyAggregate) Contract() domainagg.Contract {
	return domainagg.SurveyAggregateContract
}

func (a *surveyAggregate) configured() bool {
	d := a.deps
	return d.Maps != nil && d.Levels != nil && d.Skills != nil && d.Submissions != nil && d.Reviews != nil && d.Events != nil
}

func (a *surveyAggregate) Submit(ctx context.Context, in domainagg.SubmitSurveyInput) (*types.SurveySubmission, error) {
	const op = "Progression.Survey.Submit"
	if !a.configured() {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "survey aggregate repos not configured", nil)
	}
	if !in.Actor.IsStudent() || in.Actor.ID == uuid.Nil {
		return nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonWrongRole, "only students submit surveys for themselves")
	}
	if !in.Scope.Valid() {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonMissingScope, "scope must be a map or a level")
	}
	at := a.deps.Base.at(in.At)

	var out *types.SurveySubmission
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		mapID, skills, err := ResolveScope(dbc, a.deps.Maps, a.deps.Levels, a.deps.Skills, in.Actor, in.Scope)
		if err != nil {
			return err
		}
		if err := validateAnswers(op, skills, in.Answers); err != nil {
			return err
		}

		pending, err := a.deps.Submissions.GetPending(dbc, in.Actor.ID, in.Scope)
		if err != nil {
			return err
		}
		if pending != nil {
			return domainagg.Reasoned(domainagg.CodeConflict, op, domainagg.ReasonSubmissionPending,
				"a submission for this scope is still awaiting review")
		}
		round, err := a.deps.Submissions.MaxRound(dbc, in.Actor.ID, in.Scope)
		if err != nil {
			return err
		}

		claimed := progression.ClaimedFromAnswers(in.Answers)
		reviews := make([]*types.SurveySkillReview, 0, len(claimed))
		for _, id := range claimed {
			reviews = append(reviews, &types.SurveySkillReview{
				SkillID:  id,
				Decision: progression.DecisionPending,
			})
		}

		sub := &types.SurveySubmission{
			SubjectID:   in.Actor.ID,
			ScopeType:   in.Scope.Type,
			ScopeID:     in.Scope.ID,
			MapID:       mapID,
			Round:       round + 1,
			Status:      progression.StatusFor(reviews),
			Answers:     progression.EncodeAnswers(in.Answers),
			SubmittedAt: at,
		}
		if sub.Status == progression.SubmissionReviewed {
			reviewedAt := at
			sub.ReviewedAt = &reviewedAt
		}
		if _, err := a.deps.Submissions.Create(dbc, []*types.SurveySubmission{sub}); err != nil {
			if IsUniqueViolation(err) {
				return domainagg.Reasoned(domainagg.CodeConflict, op, domainagg.ReasonSubmissionPending,
					"a submission for this scope is still awaiting review")
			}
			return err
		}
		for _, r := range reviews {
			r.SubmissionID = sub.ID
		}
		if _, err := a.deps.Reviews.Create(dbc, reviews); err != nil {
			return err
		}
		sub.Attach(reviews)
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *surveyAggregate) Decide(ctx context.Context, in domainagg.DecideSkillInput) (*types.SurveySubmission, error) {
	const op = "Progression.Review.Decide"
	if !a.configured() {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "survey aggregate repos not configured", nil)
	}
	if !in.Actor.IsReviewer() {
		return nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonWrongRole, "only reviewers decide survey claims")
	}
	if in.SubmissionID == uuid.Nil || in.SkillID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing submission_id or skill_id", nil)
	}
	if in.Action != progression.DecisionApprove && in.Action != progression.DecisionReject {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonInvalidAction, "action must be approve or reject")
	}
	comment := strings.TrimSpace(in.Comment)
	if in.Action == progression.DecisionReject && comment == "" {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonCommentRequired, "a rejection needs a comment", "comment")
	}
	at := a.deps.Base.at(in.At)

	var out *types.SurveySubmission
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sub, err := a.deps.Submissions.LockByID(dbc, in.SubmissionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("submission not found: %s", in.SubmissionID), nil)
		}
		if err := requireMapCompany(dbc, a.deps.Maps, op, in.Actor, sub.MapID); err != nil {
			return err
		}
		if sub.Status != progression.SubmissionPending {
			return domainagg.Reasoned(domainagg.CodeConflict, op, domainagg.ReasonSubmissionReviewed, "submission is already reviewed")
		}
		row, err := a.deps.Reviews.GetBySubmissionSkill(dbc, sub.ID, in.SkillID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonSkillNotClaimed,
				"skill was not claimed in this submission", in.SkillID.String())
		}

		reviewerID := in.Actor.ID
		decidedAt := at
		if err := a.deps.Reviews.UpdateFields(dbc, row.ID, map[string]interface{}{
			"decision":    in.Action,
			"comment":     comment,
			"reviewer_id": reviewerID,
			"decided_at":  decidedAt,
		}); err != nil {
			return err
		}
		if _, err := a.deps.Events.Create(dbc, []*types.SurveyReviewEvent{{
			SubmissionID: sub.ID,
			SkillID:      in.SkillID,
			ReviewerID:   reviewerID,
			Decision:     in.Action,
			Comment:      comment,
			CreatedAt:    at,
		}}); err != nil {
			return err
		}

		reviews, err := a.deps.Reviews.ListBySubmission(dbc, sub.ID)
		if err != nil {
			return err
		}
		status := progression.StatusFor(reviews)
		updates := map[string]any{
			"status":     status,
			"updated_at": at,
		}
		if status == progression.SubmissionReviewed {
			updates["reviewed_at"] = at
		}
		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, types.SurveySubmission{}.TableName(), sub.ID, sub.Version, updates)
		if err != nil {
			return err
		}
		if !ok {
			return domainagg.Reasoned(domainagg.CodeConflict, op, domainagg.ReasonVersionConflict, "submission changed concurrently")
		}

		sub.Status = status
		sub.Version++
		if status == progression.SubmissionReviewed {
			sub.ReviewedAt = &at
		}
		sub.Attach(reviews)
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveScope loads the in-scope skills for a scope the actor is allowed to see.
// Students only see published maps of their own company.
func ResolveScope(dbc dbctx.Context, maps repos.CareerMapRepo, levels repos.CareerLevelRepo, skills repos.CareerSkillRepo, actor identity.Actor, scope progression.Scope) (uuid.UUID, []*types.CareerSkill, error) {
	const op = "Progression.Survey.ResolveScope"
	mapID := scope.ID
	if scope.Type == progression.ScopeLevel {
		lvl, err := levels.GetByID(dbc, scope.ID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		if lvl == nil {
			return uuid.Nil, nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("level not found: %s", scope.ID), nil)
		}
		mapID = lvl.MapID
	}
	m, err := maps.GetByID(dbc, mapID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if m == nil || !MapVisible(actor, m) {
		return uuid.Nil, nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("map not found: %s", mapID), nil)
	}
	var out []*types.CareerSkill
	if scope.Type == progression.ScopeLevel {
		out, err = skills.ListByLevel(dbc, scope.ID)
	} else {
		out, err = skills.ListByMap(dbc, mapID)
	}
	if err != nil {
		return uuid.Nil, nil, err
	}
	return mapID, out, nil
}

// MapVisible hides unpublished and foreign-company maps from students.
func MapVisible(actor identity.Actor, m *types.CareerMap) bool {
	if m == nil {
		return false
	}
	if actor.IsReviewer() {
		return actor.SeesCompany(m.CompanyID)
	}
	return m.Published && actor.SeesCompany(m.CompanyID)
}

func validateAnswers(op string, skills []*types.CareerSkill, answers map[uuid.UUID]progression.Confidence) error {
	inScope := make(map[uuid.UUID]bool, len(skills))
	order := make([]uuid.UUID, 0, len(skills))
	for _, s := range skills {
		inScope[s.ID] = true
		order = append(order, s.ID)
	}
	var unknown []string
	var invalid []string
	for id, c := range answers {
		if !inScope[id] {
			unknown = append(unknown, id.String())
			continue
		}
		if _, ok := progression.ParseConfidence(string(c)); !ok {
			invalid = append(invalid, id.String())
		}
	}
	if len(unknown) > 0 {
		return domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonUnknownSkill, "answers reference skills outside the scope", sortStrings(unknown)...)
	}
	if len(invalid) > 0 {
		return domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonInvalidAnswer, "answers must use one of the confidence options", sortStrings(invalid)...)
	}
	if missing := progression.MissingAnswers(order, answers); len(missing) > 0 {
		fields := make([]string, 0, len(missing))
		for _, id := range missing {
			fields = append(fields, id.String())
		}
		return domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonIncompleteSurvey, "every in-scope skill needs an answer", fields...)
	}
	return nil
}
