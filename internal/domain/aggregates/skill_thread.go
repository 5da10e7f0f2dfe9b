package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/domain/threads"
)

var SkillThreadAggregateContract = Contract{
	Name:             "Progression.SkillThreadAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns skill thread rounds, strict turn alternation, permanent acquisition on approve and skill deletion.",
}

// SkillThreadAggregate owns SkillThread/ThreadMessage writes.
//
// Failures are *aggregates.Error with codes CodeValidation, CodeForbidden, CodeNotFound,
// CodeConflict, CodePreconditionFailed (not_your_turn, skill_locked) or CodeInternal.
type SkillThreadAggregate interface {
	Aggregate

	Request(ctx context.Context, in RequestSkillInput) (ThreadResult, error)
	Message(ctx context.Context, in ThreadMessageInput) (ThreadResult, error)
	Review(ctx context.Context, in ThreadReviewInput) (ThreadResult, error)
	// DeleteSkill closes every pending thread of the skill and soft-deletes it atomically.
	DeleteSkill(ctx context.Context, skillID uuid.UUID, at time.Time) (int, error)
	// CloseIdle closes pending threads awaiting the student since before cutoff.
	CloseIdle(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

type RequestSkillInput struct {
	Actor   identity.Actor
	SkillID uuid.UUID
	Body    string
	At      time.Time
}

type ThreadMessageInput struct {
	Actor    identity.Actor
	ThreadID uuid.UUID
	Body     string
	At       time.Time
}

type ThreadReviewInput struct {
	Actor    identity.Actor
	ThreadID uuid.UUID
	Action   progression.Decision
	Body     string
	At       time.Time
}

type ThreadResult struct {
	Thread   *threads.SkillThread
	Messages []*threads.ThreadMessage
	// Created is false when the call degraded to a no-op on an existing thread.
	Created bool
	Changed bool
}
