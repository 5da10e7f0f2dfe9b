package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
)

var SurveyAggregateContract = Contract{
	Name:             "Progression.SurveyAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns submission creation and reviewer decisions; one pending submission per subject+scope.",
}

// SurveyAggregate owns SurveySubmission creation (Submit) and mutation (Decide).
//
// Failures are *aggregates.Error with codes CodeValidation, CodeForbidden, CodeNotFound,
// CodeConflict, CodeRetryable or CodeInternal.
type SurveyAggregate interface {
	Aggregate

	Submit(ctx context.Context, in SubmitSurveyInput) (*progression.SurveySubmission, error)
	Decide(ctx context.Context, in DecideSkillInput) (*progression.SurveySubmission, error)
}

type SubmitSurveyInput struct {
	Actor   identity.Actor
	Scope   progression.Scope
	Answers map[uuid.UUID]progression.Confidence
	At      time.Time
}

type DecideSkillInput struct {
	Actor        identity.Actor
	SubmissionID uuid.UUID
	SkillID      uuid.UUID
	Action       progression.Decision
	Comment      string
	At           time.Time
}
