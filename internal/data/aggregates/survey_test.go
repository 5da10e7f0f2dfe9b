package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"

	repotest "github.com/yungbote/careerladder-backend/internal/data/repos/testutil"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
)

func answerAll(skills []*types.CareerSkill, mastered ...uuid.UUID) map[uuid.UUID]progression.Confidence {
	m := map[uuid.UUID]bool{}
	for _, id := range mastered {
		m[id] = true
	}
	out := map[uuid.UUID]progression.Confidence{}
	for _, s := range skills {
		if m[s.ID] {
			out[s.ID] = progression.ConfidenceMastered
		} else {
			out[s.ID] = progression.ConfidenceSomewhatConfident
		}
	}
	return out
}

// Scenario A: submit, partial review, then full review.
func TestSurveySubmitAndReviewFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	companyID := uuid.New()
	cat := repotest.SeedCatalog(t, ctx, env.db, companyID, 3)
	skills := cat.SkillsOf(0)
	stu := student(companyID)
	coach := reviewer(identity.RoleCoach, companyID)

	sub, err := env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{
		Actor:   stu,
		Scope:   progression.LevelScope(cat.Levels[0].ID),
		Answers: answerAll(skills, skills[0].ID, skills[1].ID),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Status != progression.SubmissionPending || sub.Round != 1 {
		t.Fatalf("unexpected submission: status=%s round=%d", sub.Status, sub.Round)
	}
	if len(sub.ClaimedSkillIDs) != 2 || len(sub.AwardedSkillIDs) != 0 {
		t.Fatalf("claimed=%v awarded=%v", sub.ClaimedSkillIDs, sub.AwardedSkillIDs)
	}

	sub, err = env.surveys.Decide(ctx, domainagg.DecideSkillInput{
		Actor: coach, SubmissionID: sub.ID, SkillID: skills[0].ID, Action: progression.DecisionApprove,
	})
	if err != nil {
		t.Fatalf("Decide approve: %v", err)
	}
	if sub.Status != progression.SubmissionPending {
		t.Fatalf("one claim still pending, got %s", sub.Status)
	}
	if len(sub.AwardedSkillIDs) != 1 || sub.AwardedSkillIDs[0] != skills[0].ID {
		t.Fatalf("awarded=%v", sub.AwardedSkillIDs)
	}

	sub, err = env.surveys.Decide(ctx, domainagg.DecideSkillInput{
		Actor: coach, SubmissionID: sub.ID, SkillID: skills[1].ID, Action: progression.DecisionReject, Comment: "show me a demo",
	})
	if err != nil {
		t.Fatalf("Decide reject: %v", err)
	}
	if sub.Status != progression.SubmissionReviewed || sub.ReviewedAt == nil {
		t.Fatalf("expected reviewed, got %s", sub.Status)
	}
	if sub.Version != 2 {
		t.Fatalf("expected version 2 after two decisions, got %d", sub.Version)
	}

	_, err = env.surveys.Decide(ctx, domainagg.DecideSkillInput{
		Actor: coach, SubmissionID: sub.ID, SkillID: skills[1].ID, Action: progression.DecisionApprove,
	})
	requireReason(t, err, domainagg.CodeConflict, domainagg.ReasonSubmissionReviewed)

	events, err := env.events.ListBySubmission(dbctx.Context{Ctx: ctx}, sub.ID)
	if err != nil {
		t.Fatalf("ListBySubmission: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 history events, got %d", len(events))
	}
}

// Scenario B: incomplete survey names the missing skills.
func TestSurveySubmitIncomplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	companyID := uuid.New()
	cat := repotest.SeedCatalog(t, ctx, env.db, companyID, 2, 1)
	stu := student(companyID)

	answers := answerAll(cat.SkillsOf(0))
	_, err := env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{
		Actor: stu, Scope: progression.MapScope(cat.Map.ID), Answers: answers,
	})
	requireReason(t, err, domainagg.CodeValidation, domainagg.ReasonIncompleteSurvey)
	aggErr, _ := domainagg.As(err)
	missing := cat.SkillsOf(1)[0].ID.String()
	if len(aggErr.Fields) != 1 || aggErr.Fields[0] != missing {
		t.Fatalf("expected missing %s, got %v", missing, aggErr.Fields)
	}
}

func TestSurveySubmitRejectsBadAnswers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	companyID := uuid.New()
	cat := repotest.SeedCatalog(t, ctx, env.db, companyID, 1)
	stu := student(companyID)
	scope := progression.LevelScope(cat.Levels[0].ID)

	answers := answerAll(cat.SkillsOf(0))
	answers[uuid.New()] = progression.ConfidenceMastered
	_, err := env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{Actor: stu, Scope: scope, Answers: answers})
	requireReason(t, err, domainagg.CodeValidation, domainagg.ReasonUnknownSkill)

	answers = answerAll(cat.SkillsOf(0))
	answers[cat.SkillsOf(0)[0].ID] = "expert"
	_, err = env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{Actor: stu, Scope: scope, Answers: answers})
	requireReason(t, err, domainagg.CodeValidation, domainagg.ReasonInvalidAnswer)

	coach := reviewer(identity.RoleCoach, companyID)
	_, err = env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{Actor: coach, Scope: scope, Answers: answerAll(cat.SkillsOf(0))})
	requireReason(t, err, domainagg.CodeForbidden, domainagg.ReasonWrongRole)
}

func TestSurveySubmitHidesUnpublishedMap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	companyID := uuid.New()
	m := repotest.SeedMap(t, ctx, env.db, companyID, false)

	_, err := env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{
		Actor: student(companyID), Scope: progression.MapScope(m.ID), Answers: nil,
	})
	requireReason(t, err, domainagg.CodeNotFound, "")
}

func TestSurveyEmptyClaimIsReviewedImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	companyID := uuid.New()
	cat := repotest.SeedCatalog(t, ctx, env.db, companyID, 2)

	sub, err := env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{
		Actor: student(companyID), Scope: progression.LevelScope(cat.Levels[0].ID), Answers: answerAll(cat.SkillsOf(0)),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Status != progression.SubmissionReviewed || len(sub.ClaimedSkillIDs) != 0 {
		t.Fatalf("expected reviewed with no claims, got %s %v", sub.Status, sub.ClaimedSkillIDs)
	}
}

func TestSurveyResubmitPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	companyID := uuid.New()
	cat := repotest.SeedCatalog(t, ctx, env.db, companyID, 2)
	skills := cat.SkillsOf(0)
	stu := student(companyID)
	scope := progression.LevelScope(cat.Levels[0].ID)

	first, err := env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{Actor: stu, Scope: scope, Answers: answerAll(skills, skills[0].ID)})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, err = env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{Actor: stu, Scope: scope, Answers: answerAll(skills, skills[0].ID)})
	requireReason(t, err, domainagg.CodeConflict, domainagg.ReasonSubmissionPending)

	if _, err := env.surveys.Decide(ctx, domainagg.DecideSkillInput{
		Actor: reviewer(identity.RoleAdmin, companyID), SubmissionID: first.ID, SkillID: skills[0].ID, Action: progression.DecisionApprove,
	}); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	second, err := env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{Actor: stu, Scope: scope, Answers: answerAll(skills, skills[1].ID)})
	if err != nil {
		t.Fatalf("re-submit: %v", err)
	}
	if second.Round != 2 {
		t.Fatalf("expected round 2, got %d", second.Round)
	}
}

func TestSurveyDecidePreconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	companyID := uuid.New()
	cat := repotest.SeedCatalog(t, ctx, env.db, companyID, 2)
	skills := cat.SkillsOf(0)
	stu := student(companyID)
	coach := reviewer(identity.RoleTeamManager, companyID)

	sub, err := env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{
		Actor: stu, Scope: progression.LevelScope(cat.Levels[0].ID), Answers: answerAll(skills, skills[0].ID),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err = env.surveys.Decide(ctx, domainagg.DecideSkillInput{Actor: stu, SubmissionID: sub.ID, SkillID: skills[0].ID, Action: progression.DecisionApprove})
	requireReason(t, err, domainagg.CodeForbidden, domainagg.ReasonWrongRole)

	_, err = env.surveys.Decide(ctx, domainagg.DecideSkillInput{Actor: coach, SubmissionID: sub.ID, SkillID: skills[0].ID, Action: progression.DecisionReject, Comment: "  "})
	requireReason(t, err, domainagg.CodeValidation, domainagg.ReasonCommentRequired)

	_, err = env.surveys.Decide(ctx, domainagg.DecideSkillInput{Actor: coach, SubmissionID: sub.ID, SkillID: skills[1].ID, Action: progression.DecisionApprove})
	requireReason(t, err, domainagg.CodeValidation, domainagg.ReasonSkillNotClaimed)

	_, err = env.surveys.Decide(ctx, domainagg.DecideSkillInput{Actor: coach, SubmissionID: uuid.New(), SkillID: skills[0].ID, Action: progression.DecisionApprove})
	requireReason(t, err, domainagg.CodeNotFound, "")

}

func TestSurveyDecisionOverwritesWhilePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	companyID := uuid.New()
	cat := repotest.SeedCatalog(t, ctx, env.db, companyID, 2)
	skills := cat.SkillsOf(0)
	coach := reviewer(identity.RoleCoach, companyID)

	sub, err := env.surveys.Submit(ctx, domainagg.SubmitSurveyInput{
		Actor: student(companyID), Scope: progression.LevelScope(cat.Levels[0].ID), Answers: answerAll(skills, skills[0].ID, skills[1].ID),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := env.surveys.Decide(ctx, domainagg.DecideSkillInput{Actor: coach, SubmissionID: sub.ID, SkillID: skills[0].ID, Action: progression.DecisionReject, Comment: "not yet"}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	sub, err = env.surveys.Decide(ctx, domainagg.DecideSkillInput{Actor: coach, SubmissionID: sub.ID, SkillID: skills[0].ID, Action: progression.DecisionApprove})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if sub.Status != progression.SubmissionPending {
		t.Fatalf("second claim still pending, got %s", sub.Status)
	}
	if len(sub.AwardedSkillIDs) != 1 || sub.AwardedSkillIDs[0] != skills[0].ID {
		t.Fatalf("latest decision must win, awarded=%v", sub.AwardedSkillIDs)
	}
	events, err := env.events.ListBySubmission(dbctx.Context{Ctx: ctx}, sub.ID)
	if err != nil {
		t.Fatalf("ListBySubmission: %v", err)
	}
	if len(events) != 2 || events[0].Decision != progression.DecisionReject {
		t.Fatalf("history must keep both decisions, got %d", len(events))
	}
}
