package aggregates

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

func TestRequireStatusAllowed(t *testing.T) {
	if err := RequireStatusAllowed("pending", "pending"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireStatusAllowed("approved", "pending", "rejected"); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestUpdateByVersionBumpsVersionOnce(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	mapID := uuid.New()
	sub := &types.SurveySubmission{
		SubjectID:   uuid.New(),
		ScopeType:   progression.ScopeMap,
		ScopeID:     mapID,
		MapID:       mapID,
		Round:       1,
		Status:      progression.SubmissionPending,
		Answers:     progression.EncodeAnswers(nil),
		SubmittedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(sub).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	guard := NewCASGuard(db)
	dbc := dbctx.Context{Ctx: ctx}

	ok, err := guard.UpdateByVersion(dbc, "survey_submission", sub.ID, 0, map[string]any{"status": progression.SubmissionReviewed})
	if err != nil || !ok {
		t.Fatalf("first CAS: ok=%v err=%v", ok, err)
	}
	ok, err = guard.UpdateByVersion(dbc, "survey_submission", sub.ID, 0, map[string]any{"status": progression.SubmissionPending})
	if err != nil || ok {
		t.Fatalf("stale CAS must not apply: ok=%v err=%v", ok, err)
	}
	var got types.SurveySubmission
	if err := db.WithContext(ctx).Where("id = ?", sub.ID).Take(&got).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Version != 1 || got.Status != progression.SubmissionReviewed {
		t.Fatalf("after CAS: version=%d status=%s", got.Version, got.Status)
	}
}
