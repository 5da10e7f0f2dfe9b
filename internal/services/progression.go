package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/data/aggregates"
	"github.com/yungbote/careerladder-backend/internal/data/repos"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/career"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/domain/threads"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type SkillStatus string

const (
	SkillLocked   SkillStatus = "locked"
	SkillPending  SkillStatus = "pending"
	SkillAcquired SkillStatus = "acquired"
	SkillRejected SkillStatus = "rejected"
)

type Progress struct {
	Acquired int `json:"acquired"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

func newProgress(acquired, total int) Progress {
	p := Progress{Acquired: acquired, Total: total}
	if total > 0 {
		p.Percent = acquired * 100 / total
	}
	return p
}

type SurveyState struct {
	Status       progression.SubmissionStatus `json:"status"`
	SubmissionID *uuid.UUID                   `json:"submission_id,omitempty"`
	Round        int                          `json:"round,omitempty"`
}

type ThreadSummary struct {
	ID     uuid.UUID      `json:"id"`
	Status threads.Status `json:"status"`
	Round  int            `json:"round"`
	Turn   identity.Side  `json:"turn"`
}

type SkillState struct {
	Skill        *types.CareerSkill   `json:"skill"`
	Status       SkillStatus          `json:"status"`
	Thread       *ThreadSummary       `json:"thread,omitempty"`
	Capabilities threads.Capabilities `json:"capabilities"`
}

type KPIView struct {
	KPIID  uuid.UUID `json:"kpi_id"`
	Name   string    `json:"name"`
	Unit   string    `json:"unit"`
	Target float64   `json:"target"`
}

type LevelState struct {
	Level    *types.CareerLevel `json:"level"`
	Unlocked bool               `json:"unlocked"`
	Survey   SurveyState        `json:"survey"`
	Progress Progress           `json:"progress"`
	Skills   []SkillState       `json:"skills"`
	KPIs     []KPIView          `json:"kpis"`
}

type MapState struct {
	Map       *types.CareerMap `json:"map"`
	SubjectID uuid.UUID        `json:"subject_id"`
	Survey    SurveyState      `json:"survey"`
	Progress  Progress         `json:"progress"`
	Levels    []LevelState     `json:"levels"`
}

// ProgressionService is the read-only projector over catalog, submissions and threads.
type ProgressionService interface {
	MapState(ctx context.Context, actor identity.Actor, subjectID, mapID uuid.UUID) (*MapState, error)
	LevelState(ctx context.Context, actor identity.Actor, subjectID, levelID uuid.UUID) (*LevelState, error)
}

type progressionService struct {
	db           *gorm.DB
	log          *logger.Logger
	maps         repos.CareerMapRepo
	levels       repos.CareerLevelRepo
	skills       repos.CareerSkillRepo
	kpis         repos.KPIDefinitionRepo
	submissions  repos.SurveySubmissionRepo
	reviews      repos.SurveySkillReviewRepo
	acquisitions repos.SkillAcquisitionRepo
	threads      repos.SkillThreadRepo
	messages     repos.ThreadMessageRepo
}

type ProgressionServiceDeps struct {
	Maps         repos.CareerMapRepo
	Levels       repos.CareerLevelRepo
	Skills       repos.CareerSkillRepo
	KPIs         repos.KPIDefinitionRepo
	Submissions  repos.SurveySubmissionRepo
	Reviews      repos.SurveySkillReviewRepo
	Acquisitions repos.SkillAcquisitionRepo
	Threads      repos.SkillThreadRepo
	Messages     repos.ThreadMessageRepo
}

func NewProgressionService(db *gorm.DB, log *logger.Logger, deps ProgressionServiceDeps) ProgressionService {
	return &progressionService{
		db:           db,
		log:          log.With("service", "ProgressionService"),
		maps:         deps.Maps,
		levels:       deps.Levels,
		skills:       deps.Skills,
		kpis:         deps.KPIs,
		submissions:  deps.Submissions,
		reviews:      deps.Reviews,
		acquisitions: deps.Acquisitions,
		threads:      deps.Threads,
		messages:     deps.Messages,
	}
}

func (s *progressionService) LevelState(ctx context.Context, actor identity.Actor, subjectID, levelID uuid.UUID) (*LevelState, error) {
	const op = "Progression.LevelState"
	lvl, err := s.levels.GetByID(dbctx.Context{Ctx: ctx}, levelID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if lvl == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("level not found: %s", levelID), nil)
	}
	ms, err := s.MapState(ctx, actor, subjectID, lvl.MapID)
	if err != nil {
		return nil, err
	}
	for i := range ms.Levels {
		if ms.Levels[i].Level.ID == levelID {
			return &ms.Levels[i], nil
		}
	}
	return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("level not found: %s", levelID), nil)
}

// mapSnapshot is everything the projector reads for one (subject, map).
type mapSnapshot struct {
	levels   []*types.CareerLevel
	skills   []*types.CareerSkill
	subs     []*types.SurveySubmission
	threads  []*types.SkillThread
	messages map[uuid.UUID][]*types.ThreadMessage
	acquired map[uuid.UUID]bool
	kpis     map[uuid.UUID]*types.KPIDefinition
}

func (s *progressionService) MapState(ctx context.Context, actor identity.Actor, subjectID, mapID uuid.UUID) (*MapState, error) {
	const op = "Progression.MapState"
	if subjectID == uuid.Nil {
		subjectID = actor.ID
	}
	if !actor.CanView(subjectID) {
		return nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonNotOwner, "students only see their own progression")
	}
	m, err := s.maps.GetByID(dbctx.Context{Ctx: ctx}, mapID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if !aggregates.MapVisible(actor, m) {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("map not found: %s", mapID), nil)
	}
	snap, err := s.load(ctx, subjectID, m.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return project(actor, subjectID, m, snap), nil
}

func (s *progressionService) load(ctx context.Context, subjectID, mapID uuid.UUID) (*mapSnapshot, error) {
	snap := &mapSnapshot{}
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		var err error
		snap.levels, err = s.levels.ListByMap(dbc, mapID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.skills, err = s.skills.ListByMap(dbc, mapID)
		return err
	})
	g.Go(func() error {
		subs, err := s.submissions.ListBySubjectMap(dbc, subjectID, mapID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(subs))
		for _, sub := range subs {
			ids = append(ids, sub.ID)
		}
		byID, err := s.reviews.ListBySubmissions(dbc, ids)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			sub.Attach(byID[sub.ID])
		}
		snap.subs = subs
		return nil
	})
	g.Go(func() error {
		ths, err := s.threads.ListByStudentMap(dbc, subjectID, mapID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(ths))
		for _, th := range ths {
			ids = append(ids, th.ID)
		}
		msgs, err := s.messages.ListByThreads(dbc, ids)
		if err != nil {
			return err
		}
		snap.threads, snap.messages = ths, msgs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	g, gctx = errgroup.WithContext(ctx)
	dbc = dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		ids := make([]uuid.UUID, 0, len(snap.skills))
		for _, sk := range snap.skills {
			ids = append(ids, sk.ID)
		}
		rows, err := s.acquisitions.ListByStudentSkills(dbc, subjectID, ids)
		if err != nil {
			return err
		}
		snap.acquired = make(map[uuid.UUID]bool, len(rows))
		for _, a := range rows {
			snap.acquired[a.SkillID] = true
		}
		return nil
	})
	g.Go(func() error {
		seen := map[uuid.UUID]bool{}
		var ids []uuid.UUID
		for _, l := range snap.levels {
			for _, t := range l.Targets() {
				if !seen[t.KPIID] {
					seen[t.KPIID] = true
					ids = append(ids, t.KPIID)
				}
			}
		}
		snap.kpis = map[uuid.UUID]*types.KPIDefinition{}
		if len(ids) == 0 {
			return nil
		}
		rows, err := s.kpis.GetByIDs(dbc, ids)
		if err != nil {
			return err
		}
		for _, k := range rows {
			snap.kpis[k.ID] = k
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func surveyState(sub *types.SurveySubmission) SurveyState {
	if sub == nil {
		return SurveyState{Status: progression.SubmissionNotSubmitted}
	}
	id := sub.ID
	return SurveyState{Status: sub.Status, SubmissionID: &id, Round: sub.Round}
}

// project is a pure function of the snapshot.
func project(actor identity.Actor, subjectID uuid.UUID, m *types.CareerMap, snap *mapSnapshot) *MapState {
	career.SortLevels(snap.levels)
	awarded := progression.AwardedSet(snap.subs)
	threadBySkill := make(map[uuid.UUID]*types.SkillThread, len(snap.threads))
	for _, th := range snap.threads {
		threadBySkill[th.SkillID] = th
	}
	skillsByLevel := map[uuid.UUID][]*types.CareerSkill{}
	for _, sk := range snap.skills {
		skillsByLevel[sk.LevelID] = append(skillsByLevel[sk.LevelID], sk)
	}

	out := &MapState{
		Map:       m,
		SubjectID: subjectID,
		Survey:    surveyState(progression.Latest(snap.subs, progression.MapScope(m.ID))),
		Levels:    make([]LevelState, 0, len(snap.levels)),
	}
	mapAcquired, mapTotal := 0, 0
	for _, lvl := range snap.levels {
		unlocked := progression.LevelUnlocked(m.ID, lvl.ID, snap.subs)
		ls := LevelState{
			Level:    lvl,
			Unlocked: unlocked,
			Survey:   surveyState(progression.Latest(snap.subs, progression.LevelScope(lvl.ID))),
			Skills:   []SkillState{},
			KPIs:     []KPIView{},
		}
		skills := skillsByLevel[lvl.ID]
		career.SortSkills(skills)
		acquired := 0
		for _, sk := range skills {
			th := threadBySkill[sk.ID]
			msgs := []*types.ThreadMessage(nil)
			if th != nil {
				msgs = snap.messages[th.ID]
			}
			st := SkillState{
				Skill:        sk,
				Status:       skillStatus(unlocked, awarded[sk.ID] || snap.acquired[sk.ID], th),
				Capabilities: threads.CapabilitiesFor(actor, subjectID, th, msgs, unlocked),
			}
			if th != nil {
				st.Thread = &ThreadSummary{ID: th.ID, Status: th.Status, Round: th.Round, Turn: threads.Turn(msgs)}
			}
			if st.Status == SkillAcquired {
				acquired++
			}
			ls.Skills = append(ls.Skills, st)
		}
		ls.Progress = newProgress(acquired, len(skills))
		for _, t := range lvl.Targets() {
			kv := KPIView{KPIID: t.KPIID, Target: t.Target}
			if k := snap.kpis[t.KPIID]; k != nil {
				kv.Name, kv.Unit = k.Name, k.Unit
			}
			ls.KPIs = append(ls.KPIs, kv)
		}
		mapAcquired += acquired
		mapTotal += len(skills)
		out.Levels = append(out.Levels, ls)
	}
	out.Progress = newProgress(mapAcquired, mapTotal)
	return out
}

// skillStatus: acquired beats everything, a locked level hides thread state,
// then pending, then rejected. No thread or a closed one reads as locked.
func skillStatus(levelUnlocked, acquired bool, th *types.SkillThread) SkillStatus {
	if acquired || (th != nil && th.Status == threads.StatusApproved) {
		return SkillAcquired
	}
	if !levelUnlocked || th == nil {
		return SkillLocked
	}
	switch th.Status {
	case threads.StatusPending:
		return SkillPending
	case threads.StatusRejected:
		return SkillRejected
	}
	return SkillLocked
}
