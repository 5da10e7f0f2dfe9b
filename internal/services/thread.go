package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/data/aggregates"
	"github.com/yungbote/careerladder-backend/internal/data/repos"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/domain/threads"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

// ThreadView is the single thread surface for both sides, gated by Capabilities.
type ThreadView struct {
	Thread       *types.SkillThread     `json:"thread"`
	Messages     []*types.ThreadMessage `json:"messages"`
	Turn         identity.Side          `json:"turn"`
	Capabilities threads.Capabilities   `json:"capabilities"`
}

type ThreadService interface {
	// Get returns NotFound when the student has no conversation for the skill yet.
	Get(ctx context.Context, actor identity.Actor, skillID, studentID uuid.UUID) (*ThreadView, error)
	// Request never surfaces a duplicate-request conflict; it degrades to Get.
	Request(ctx context.Context, actor identity.Actor, skillID uuid.UUID, body string) (*ThreadView, error)
	Message(ctx context.Context, actor identity.Actor, threadID uuid.UUID, body string) (*ThreadView, error)
	Review(ctx context.Context, actor identity.Actor, threadID uuid.UUID, action, body string) (*ThreadView, error)
	// AwaitingReview lists open threads whose turn belongs to a reviewer, least recently active first.
	AwaitingReview(ctx context.Context, actor identity.Actor, limit int) ([]*ThreadView, error)
}

type threadService struct {
	db          *gorm.DB
	log         *logger.Logger
	maps        repos.CareerMapRepo
	submissions repos.SurveySubmissionRepo
	threads     repos.SkillThreadRepo
	messages    repos.ThreadMessageRepo
	agg         domainagg.SkillThreadAggregate

	pageSize int
}

func NewThreadService(
	db *gorm.DB,
	log *logger.Logger,
	maps repos.CareerMapRepo,
	submissions repos.SurveySubmissionRepo,
	threadRepo repos.SkillThreadRepo,
	messages repos.ThreadMessageRepo,
	agg domainagg.SkillThreadAggregate,
) ThreadService {
	return &threadService{
		db:          db,
		log:         log.With("service", "ThreadService"),
		maps:        maps,
		submissions: submissions,
		threads:     threadRepo,
		messages:    messages,
		agg:         agg,
		pageSize:    awaitingPageSize,
	}
}

func (s *threadService) Get(ctx context.Context, actor identity.Actor, skillID, studentID uuid.UUID) (*ThreadView, error) {
	const op = "Thread.Get"
	if studentID == uuid.Nil {
		studentID = actor.ID
	}
	if !actor.CanView(studentID) {
		return nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonNotOwner, "students only see their own threads")
	}
	dbc := dbctx.Context{Ctx: ctx}
	th, err := s.threads.GetByStudentSkill(dbc, studentID, skillID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if th == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "no thread for this skill yet", nil)
	}
	msgs, err := s.messages.ListByThread(dbc, th.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return s.view(dbc, op, actor, th, msgs)
}

func (s *threadService) Request(ctx context.Context, actor identity.Actor, skillID uuid.UUID, body string) (*ThreadView, error) {
	res, err := s.agg.Request(ctx, domainagg.RequestSkillInput{Actor: actor, SkillID: skillID, Body: body})
	if err != nil {
		if domainagg.IsCode(err, domainagg.CodeConflict) {
			s.log.Debug("duplicate skill request, refetching", "skill", skillID)
			return s.Get(ctx, actor, skillID, actor.ID)
		}
		return nil, err
	}
	if res.Changed {
		s.log.Info("skill requested", "thread", res.Thread.ID, "skill", skillID, "round", res.Thread.Round, "created", res.Created)
	}
	return s.Get(ctx, actor, skillID, actor.ID)
}

func (s *threadService) Message(ctx context.Context, actor identity.Actor, threadID uuid.UUID, body string) (*ThreadView, error) {
	res, err := s.agg.Message(ctx, domainagg.ThreadMessageInput{Actor: actor, ThreadID: threadID, Body: body})
	if err != nil {
		return nil, err
	}
	return s.refetch(ctx, actor, res.Thread.ID)
}

func (s *threadService) Review(ctx context.Context, actor identity.Actor, threadID uuid.UUID, action, body string) (*ThreadView, error) {
	const op = "Thread.Review"
	decision, ok := progression.ParseAction(action)
	if !ok {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, domainagg.ReasonInvalidAction, "action must be approve or reject", "action")
	}
	res, err := s.agg.Review(ctx, domainagg.ThreadReviewInput{Actor: actor, ThreadID: threadID, Action: decision, Body: body})
	if err != nil {
		return nil, err
	}
	s.log.Info("skill thread decided", "thread", res.Thread.ID, "decision", decision, "status", res.Thread.Status)
	return s.refetch(ctx, actor, res.Thread.ID)
}

func (s *threadService) refetch(ctx context.Context, actor identity.Actor, threadID uuid.UUID) (*ThreadView, error) {
	const op = "Thread.Refetch"
	dbc := dbctx.Context{Ctx: ctx}
	th, err := s.threads.GetByID(dbc, threadID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if th == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("thread not found: %s", threadID), nil)
	}
	msgs, err := s.messages.ListByThread(dbc, th.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return s.view(dbc, op, actor, th, msgs)
}

func (s *threadService) view(dbc dbctx.Context, op string, actor identity.Actor, th *types.SkillThread, msgs []*types.ThreadMessage) (*ThreadView, error) {
	unlocked := true
	if th.Status.Requestable() {
		subs, err := s.submissions.ListBySubjectMap(dbc, th.StudentID, th.MapID)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		unlocked = progression.LevelUnlocked(th.MapID, th.LevelID, subs)
	}
	return newThreadView(actor, th, msgs, unlocked), nil
}

func newThreadView(actor identity.Actor, th *types.SkillThread, msgs []*types.ThreadMessage, unlocked bool) *ThreadView {
	if msgs == nil {
		msgs = []*types.ThreadMessage{}
	}
	return &ThreadView{
		Thread:       th,
		Messages:     msgs,
		Turn:         threads.Turn(msgs),
		Capabilities: threads.CapabilitiesFor(actor, th.StudentID, th, msgs, unlocked),
	}
}

const awaitingPageSize = 100

func (s *threadService) AwaitingReview(ctx context.Context, actor identity.Actor, limit int) ([]*ThreadView, error) {
	const op = "Thread.AwaitingReview"
	if !actor.IsReviewer() {
		return nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonWrongRole, "reviewer role required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	mapIDs, err := companyMapIDs(dbc, s.maps, actor)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	out := []*ThreadView{}
	if mapIDs != nil && len(mapIDs) == 0 {
		return out, nil
	}
	if limit <= 0 {
		limit = s.pageSize
	}
	// Student-turn threads share the pending status, so page until enough reviewer turns are found.
	var after *types.SkillThread
	for len(out) < limit {
		page, err := s.threads.ListPendingAfter(dbc, mapIDs, after, s.pageSize)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		ids := make([]uuid.UUID, 0, len(page))
		for _, th := range page {
			ids = append(ids, th.ID)
		}
		byThread, err := s.messages.ListByThreads(dbc, ids)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		for _, th := range page {
			msgs := byThread[th.ID]
			if threads.Turn(msgs) != identity.SideReviewer {
				continue
			}
			out = append(out, newThreadView(actor, th, msgs, true))
			if len(out) == limit {
				break
			}
		}
		if len(page) < s.pageSize {
			break
		}
		after = page[len(page)-1]
	}
	return out, nil
}
