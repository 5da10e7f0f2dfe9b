package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/data/repos"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/domain/threads"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
)

const (
	CloseReasonIdle         = "idle_timeout"
	CloseReasonSkillDeleted = "skill_deleted"
)

type SkillThreadAggregateDeps struct {
	Base BaseDeps

	Maps         repos.CareerMapRepo
	Skills       repos.CareerSkillRepo
	Submissions  repos.SurveySubmissionRepo
	Threads      repos.SkillThreadRepo
	Messages     repos.ThreadMessageRepo
	Acquisitions repos.SkillAcquisitionRepo
}

type skillThreadAggregate struct {
	deps SkillThreadAggregateDeps
}

func NewSkillThreadAggregate(deps SkillThreadAggregateDeps) domainagg.SkillThreadAggregate {
	deps.Base = deps.Base.withDefaults()
	return &skillThreadAggregate{deps: deps}
}

func (a *skillThreadAggregate) Contract() domainagg.Contract {
	return domainagg.SkillThreadAggregateContract
}

func (a *skillThreadAggregate) configured() bool {
	d := a.deps
	return d.Maps != nil && d.Skills != nil && d.Submissions != nil && d.Threads != nil && d.Messages != nil && d.Acquisitions != nil
}

func (a *skillThreadAggregate) Request(ctx context.Context, in domainagg.RequestSkillInput) (domainagg.ThreadResult, error) {
	const op = "Progression.Thread.Request"
	var out domainagg.ThreadResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "skill thread aggregate repos not configured", nil)
	}
	if !in.Actor.IsStudent() || in.Actor.ID == uuid.Nil {
		return out, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonWrongRole, "only students request skills")
	}
	if in.SkillID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing skill_id", nil)
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return out, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonBodyRequired, "a request needs a message", "body")
	}
	at := a.deps.Base.at(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		// Shared lock orders the request against DeleteSkill; a deleted skill reads as missing.
		skill, err := a.deps.Skills.LockSharedByID(dbc, in.SkillID)
		if err != nil {
			return err
		}
		if skill == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("skill not found: %s", in.SkillID), nil)
		}

		th, err := a.deps.Threads.GetByStudentSkill(dbc, in.Actor.ID, skill.ID)
		if err != nil {
			return err
		}
		if th != nil && !th.Status.Requestable() {
			msgs, err := a.deps.Messages.ListByThread(dbc, th.ID)
			if err != nil {
				return err
			}
			out = domainagg.ThreadResult{Thread: th, Messages: msgs}
			return nil
		}

		subs, err := a.deps.Submissions.ListBySubjectMap(dbc, in.Actor.ID, skill.MapID)
		if err != nil {
			return err
		}
		if !progression.LevelUnlocked(skill.MapID, skill.LevelID, subs) {
			return domainagg.Reasoned(domainagg.CodePreconditionFailed, op, domainagg.ReasonSkillLocked,
				"the skill's level is locked until a survey covering it is reviewed")
		}

		created := th == nil
		if created {
			th = &types.SkillThread{
				SkillID:       skill.ID,
				StudentID:     in.Actor.ID,
				LevelID:       skill.LevelID,
				MapID:         skill.MapID,
				Status:        threads.StatusPending,
				Round:         1,
				NextSeq:       1,
				LastMessageAt: at,
			}
			if _, err := a.deps.Threads.Create(dbc, []*types.SkillThread{th}); err != nil {
				if IsUniqueViolation(err) {
					return domainagg.Reasoned(domainagg.CodeConflict, op, domainagg.ReasonThreadExists, "thread already exists")
				}
				return err
			}
		} else {
			th.Round++
			th.Status = threads.StatusPending
			th.ClosedReason = ""
			if err := a.deps.Threads.UpdateFields(dbc, th.ID, map[string]interface{}{
				"status":        th.Status,
				"round":         th.Round,
				"closed_reason": "",
			}); err != nil {
				return err
			}
		}
		if _, err := a.appendMessage(dbc, th, in.Actor.Role, in.Actor.ID, body, at); err != nil {
			return err
		}
		msgs, err := a.deps.Messages.ListByThread(dbc, th.ID)
		if err != nil {
			return err
		}
		out = domainagg.ThreadResult{Thread: th, Messages: msgs, Created: created, Changed: true}
		return nil
	})
	if err != nil {
		return domainagg.ThreadResult{}, err
	}
	return out, nil
}

func (a *skillThreadAggregate) Message(ctx context.Context, in domainagg.ThreadMessageInput) (domainagg.ThreadResult, error) {
	const op = "Progression.Thread.Message"
	var out domainagg.ThreadResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "skill thread aggregate repos not configured", nil)
	}
	if in.Actor.Role.Side() != identity.SideStudent && in.Actor.Role.Side() != identity.SideReviewer {
		return out, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonWrongRole, "role cannot post thread messages")
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return out, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonBodyRequired, "message body is required", "body")
	}
	at := a.deps.Base.at(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		th, msgs, err := a.lockOpen(dbc, op, in.ThreadID, in.Actor)
		if err != nil {
			return err
		}
		if threads.Turn(msgs) != in.Actor.Role.Side() {
			return domainagg.Reasoned(domainagg.CodePreconditionFailed, op, domainagg.ReasonNotYourTurn, "it is the other side's turn")
		}
		m, err := a.appendMessage(dbc, th, in.Actor.Role, in.Actor.ID, body, at)
		if err != nil {
			return err
		}
		out = domainagg.ThreadResult{Thread: th, Messages: append(msgs, m), Changed: true}
		return nil
	})
	if err != nil {
		return domainagg.ThreadResult{}, err
	}
	return out, nil
}

func (a *skillThreadAggregate) Review(ctx context.Context, in domainagg.ThreadReviewInput) (domainagg.ThreadResult, error) {
	const op = "Progression.Thread.Review"
	var out domainagg.ThreadResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "skill thread aggregate repos not configured", nil)
	}
	if !in.Actor.IsReviewer() {
		return out, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonWrongRole, "only reviewers decide threads")
	}
	if in.Action != progression.DecisionApprove && in.Action != progression.DecisionReject {
		return out, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonInvalidAction, "action must be approve or reject")
	}
	body := strings.TrimSpace(in.Body)
	if in.Action == progression.DecisionReject && body == "" {
		return out, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonCommentRequired, "a rejection needs a message", "body")
	}
	at := a.deps.Base.at(in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		th, msgs, err := a.lockOpen(dbc, op, in.ThreadID, in.Actor)
		if err != nil {
			return err
		}
		if threads.Turn(msgs) != identity.SideReviewer {
			return domainagg.Reasoned(domainagg.CodePreconditionFailed, op, domainagg.ReasonNotYourTurn, "the student has not answered yet")
		}

		role, senderID := in.Actor.Role, in.Actor.ID
		if body == "" {
			// Silent approve.
			role, senderID = identity.RoleSystem, uuid.Nil
		}
		m, err := a.appendMessage(dbc, th, role, senderID, body, at)
		if err != nil {
			return err
		}

		next := threads.StatusRejected
		if in.Action == progression.DecisionApprove {
			next = threads.StatusApproved
			if err := a.deps.Acquisitions.Upsert(dbc, &types.SkillAcquisition{
				StudentID:  th.StudentID,
				SkillID:    th.SkillID,
				ThreadID:   th.ID,
				ApprovedBy: in.Actor.ID,
				AcquiredAt: at,
			}); err != nil {
				return err
			}
		}
		if err := a.deps.Threads.UpdateFields(dbc, th.ID, map[string]interface{}{"status": next}); err != nil {
			return err
		}
		th.Status = next
		out = domainagg.ThreadResult{Thread: th, Messages: append(msgs, m), Changed: true}
		return nil
	})
	if err != nil {
		return domainagg.ThreadResult{}, err
	}
	return out, nil
}

func (a *skillThreadAggregate) DeleteSkill(ctx context.Context, skillID uuid.UUID, at time.Time) (int, error) {
	const op = "Progression.Thread.DeleteSkill"
	if !a.configured() {
		return 0, domainagg.NewError(domainagg.CodeInternal, op, "skill thread aggregate repos not configured", nil)
	}
	if skillID == uuid.Nil {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "missing skill_id", nil)
	}
	at = a.deps.Base.at(at)

	closed := 0
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		closed = 0
		skill, err := a.deps.Skills.LockByID(dbc, skillID)
		if err != nil {
			return err
		}
		if skill == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("skill not found: %s", skillID), nil)
		}
		open, err := a.deps.Threads.ListPendingBySkill(dbc, skill.ID)
		if err != nil {
			return err
		}
		for _, row := range open {
			th, err := a.deps.Threads.LockByID(dbc, row.ID)
			if err != nil {
				return err
			}
			if th == nil || th.Status != threads.StatusPending {
				continue
			}
			if err := a.close(dbc, th, CloseReasonSkillDeleted, at); err != nil {
				return err
			}
			closed++
		}
		return a.deps.Skills.SoftDelete(dbc, skill.ID)
	})
	if err != nil {
		return 0, err
	}
	return closed, nil
}

// CloseIdle closes each thread in its own transaction so one failure does not
// hold back the rest of the batch.
func (a *skillThreadAggregate) CloseIdle(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	const op = "Progression.Thread.CloseIdle"
	if !a.configured() {
		return 0, domainagg.NewError(domainagg.CodeInternal, op, "skill thread aggregate repos not configured", nil)
	}
	if cutoff.IsZero() {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "missing cutoff", nil)
	}
	cutoff = cutoff.UTC()
	candidates, err := a.deps.Threads.ListPendingIdleSince(dbctx.Context{Ctx: ctx}, cutoff, limit)
	if err != nil {
		return 0, MapError(op, err)
	}

	closed := 0
	var firstErr error
	for _, row := range candidates {
		id := row.ID
		did := false
		err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
			did = false
			th, err := a.deps.Threads.LockByID(dbc, id)
			if err != nil {
				return err
			}
			if th == nil || th.Status != threads.StatusPending || !th.LastMessageAt.Before(cutoff) {
				return nil
			}
			msgs, err := a.deps.Messages.ListByThread(dbc, th.ID)
			if err != nil {
				return err
			}
			// Threads waiting on a reviewer stay open.
			if threads.Turn(msgs) != identity.SideStudent {
				return nil
			}
			if err := a.close(dbc, th, CloseReasonIdle, a.deps.Base.Now()); err != nil {
				return err
			}
			did = true
			return nil
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if did {
			closed++
		}
	}
	return closed, firstErr
}

// lockOpen locks a pending thread the actor may act on and returns its history.
func (a *skillThreadAggregate) lockOpen(dbc dbctx.Context, op string, threadID uuid.UUID, actor identity.Actor) (*types.SkillThread, []*types.ThreadMessage, error) {
	if threadID == uuid.Nil {
		return nil, nil, domainagg.NewError(domainagg.CodeValidation, op, "missing thread_id", nil)
	}
	th, err := a.deps.Threads.LockByID(dbc, threadID)
	if err != nil {
		return nil, nil, err
	}
	if th == nil {
		return nil, nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("thread not found: %s", threadID), nil)
	}
	if actor.IsStudent() && actor.ID != th.StudentID {
		return nil, nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonNotOwner, "students act only on their own threads")
	}
	if err := requireMapCompany(dbc, a.deps.Maps, op, actor, th.MapID); err != nil {
		return nil, nil, err
	}
	if th.Status != threads.StatusPending {
		return nil, nil, domainagg.Reasoned(domainagg.CodeConflict, op, domainagg.ReasonThreadNotOpen, fmt.Sprintf("thread is %s", th.Status))
	}
	msgs, err := a.deps.Messages.ListByThread(dbc, th.ID)
	if err != nil {
		return nil, nil, err
	}
	return th, msgs, nil
}

func (a *skillThreadAggregate) close(dbc dbctx.Context, th *types.SkillThread, reason string, at time.Time) error {
	if _, err := a.appendMessage(dbc, th, identity.RoleSystem, uuid.Nil, "", at); err != nil {
		return err
	}
	if err := a.deps.Threads.UpdateFields(dbc, th.ID, map[string]interface{}{
		"status":        threads.StatusClosed,
		"closed_reason": reason,
	}); err != nil {
		return err
	}
	th.Status = threads.StatusClosed
	th.ClosedReason = reason
	return nil
}

// appendMessage allocates the next seq from the locked thread row.
func (a *skillThreadAggregate) appendMessage(dbc dbctx.Context, th *types.SkillThread, role identity.Role, senderID uuid.UUID, body string, at time.Time) (*types.ThreadMessage, error) {
	seq := th.NextSeq
	if seq < 1 {
		seq = 1
	}
	m := &types.ThreadMessage{
		ThreadID:   th.ID,
		Seq:        seq,
		Round:      th.Round,
		SenderRole: role,
		SenderID:   senderID,
		Body:       body,
		CreatedAt:  at,
	}
	if _, err := a.deps.Messages.Create(dbc, []*types.ThreadMessage{m}); err != nil {
		return nil, err
	}
	if err := a.deps.Threads.UpdateFields(dbc, th.ID, map[string]interface{}{
		"next_seq":        seq + 1,
		"last_message_at": at,
	}); err != nil {
		return nil, err
	}
	th.NextSeq = seq + 1
	th.LastMessageAt = at
	return m, nil
}
