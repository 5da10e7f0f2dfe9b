package progression

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	repotest "github.com/yungbote/careerladder-backend/internal/data/repos/testutil"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
)

func newSubmission(subject uuid.UUID, scope progression.Scope, mapID uuid.UUID, round int, status progression.SubmissionStatus, at time.Time) *types.SurveySubmission {
	return &types.SurveySubmission{
		SubjectID:   subject,
		ScopeType:   scope.Type,
		ScopeID:     scope.ID,
		MapID:       mapID,
		Round:       round,
		Status:      status,
		Answers:     progression.EncodeAnswers(nil),
		SubmittedAt: at,
	}
}

func TestPendingIndexRejectsSecondPendingSubmission(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	subs := NewSurveySubmissionRepo(db, repotest.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	subject, mapID := uuid.New(), uuid.New()
	scope := progression.MapScope(mapID)
	now := time.Now().UTC()

	if _, err := subs.Create(dbc, []*types.SurveySubmission{newSubmission(subject, scope, mapID, 1, progression.SubmissionPending, now)}); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if _, err := subs.Create(dbc, []*types.SurveySubmission{newSubmission(subject, scope, mapID, 2, progression.SubmissionPending, now)}); err == nil {
		t.Fatalf("expected unique violation for a second pending submission")
	}
	// A reviewed one with a new round is fine.
	if _, err := subs.Create(dbc, []*types.SurveySubmission{newSubmission(subject, scope, mapID, 2, progression.SubmissionReviewed, now)}); err != nil {
		t.Fatalf("Create reviewed: %v", err)
	}

	pending, err := subs.GetPending(dbc, subject, scope)
	if err != nil || pending == nil || pending.Round != 1 {
		t.Fatalf("GetPending: got=%+v err=%v", pending, err)
	}
	latest, err := subs.GetLatest(dbc, subject, scope)
	if err != nil || latest == nil || latest.Round != 2 {
		t.Fatalf("GetLatest: got=%+v err=%v", latest, err)
	}
	maxRound, err := subs.MaxRound(dbc, subject, scope)
	if err != nil || maxRound != 2 {
		t.Fatalf("MaxRound: got=%d err=%v", maxRound, err)
	}
	queue, err := subs.ListPending(dbc, []uuid.UUID{mapID}, 10)
	if err != nil || len(queue) != 1 {
		t.Fatalf("ListPending: len=%d err=%v", len(queue), err)
	}
}

func TestReviewRowsGroupBySubmission(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	ctx := context.Background()
	log := repotest.Logger(t)
	subs := NewSurveySubmissionRepo(tx, log)
	reviews := NewSurveySkillReviewRepo(tx, log)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	mapID := uuid.New()
	a := newSubmission(uuid.New(), progression.MapScope(mapID), mapID, 1, progression.SubmissionPending, time.Now().UTC())
	b := newSubmission(uuid.New(), progression.MapScope(mapID), mapID, 1, progression.SubmissionPending, time.Now().UTC())
	if _, err := subs.Create(dbc, []*types.SurveySubmission{a, b}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	s1, s2 := uuid.New(), uuid.New()
	if _, err := reviews.Create(dbc, []*types.SurveySkillReview{
		{SubmissionID: a.ID, SkillID: s1, Decision: progression.DecisionPending},
		{SubmissionID: a.ID, SkillID: s2, Decision: progression.DecisionPending},
		{SubmissionID: b.ID, SkillID: s1, Decision: progression.DecisionPending},
	}); err != nil {
		t.Fatalf("Create reviews: %v", err)
	}
	grouped, err := reviews.ListBySubmissions(dbc, []uuid.UUID{a.ID, b.ID})
	if err != nil {
		t.Fatalf("ListBySubmissions: %v", err)
	}
	if len(grouped[a.ID]) != 2 || len(grouped[b.ID]) != 1 {
		t.Fatalf("grouping: a=%d b=%d", len(grouped[a.ID]), len(grouped[b.ID]))
	}
	// Must stay last: a failed insert aborts a postgres transaction.
	if _, err := reviews.Create(dbc, []*types.SurveySkillReview{{SubmissionID: a.ID, SkillID: s1, Decision: progression.DecisionPending}}); err == nil {
		t.Fatalf("expected duplicate (submission, skill) review to fail")
	}
}

func TestAcquisitionUpsertKeepsFirst(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	acq := NewSkillAcquisitionRepo(db, repotest.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	student, skill := uuid.New(), uuid.New()
	first := uuid.New()
	now := time.Now().UTC()
	if err := acq.Upsert(dbc, &types.SkillAcquisition{StudentID: student, SkillID: skill, ThreadID: first, ApprovedBy: uuid.New(), AcquiredAt: now}); err != nil {
		t.Fatalf("Upsert first: %v", err)
	}
	if err := acq.Upsert(dbc, &types.SkillAcquisition{StudentID: student, SkillID: skill, ThreadID: uuid.New(), ApprovedBy: uuid.New(), AcquiredAt: now}); err != nil {
		t.Fatalf("Upsert second: %v", err)
	}
	rows, err := acq.ListByStudentSkills(dbc, student, []uuid.UUID{skill, uuid.New()})
	if err != nil {
		t.Fatalf("ListByStudentSkills: %v", err)
	}
	if len(rows) != 1 || rows[0].ThreadID != first {
		t.Fatalf("expected the first acquisition to stick, got %+v", rows)
	}
}
