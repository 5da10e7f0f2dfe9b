package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/data/aggregates"
	"github.com/yungbote/careerladder-backend/internal/data/repos"
	types "github.com/yungbote/careerladder-backend/internal/domain"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/career"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

// LevelDetail is a level with its skills in display order.
type LevelDetail struct {
	*types.CareerLevel
	Skills []*types.CareerSkill `json:"skills"`
}

type MapDetail struct {
	*types.CareerMap
	Levels []LevelDetail `json:"levels"`
}

type CreateMapInput struct {
	Title     string
	Category  string
	CompanyID uuid.UUID
	Published bool
}

type CreateLevelInput struct {
	// LevelNumber zero appends after the current highest level.
	LevelNumber    int
	Title          string
	SalaryMin      *int64
	SalaryMax      *int64
	SalaryCurrency string
	KPITargets     []career.KPITarget
}

type CreateSkillInput struct {
	Title          string
	Description    string
	SkillType      string
	Points         int
	EvidencePolicy string
	// Position nil appends after the last skill of the level.
	Position *int
}

type CreateKPIInput struct {
	Name      string
	Unit      string
	CompanyID uuid.UUID
}

// CatalogService is the read/write surface over career maps, levels, skills and KPIs.
// Reads apply the actor's visibility; writes are reviewer-only.
type CatalogService interface {
	ListMaps(ctx context.Context, actor identity.Actor, category string) ([]*types.CareerMap, error)
	GetMap(ctx context.Context, actor identity.Actor, mapID uuid.UUID) (*MapDetail, error)
	CreateMap(ctx context.Context, actor identity.Actor, in CreateMapInput) (*types.CareerMap, error)
	SetPublished(ctx context.Context, actor identity.Actor, mapID uuid.UUID, published bool) (*types.CareerMap, error)
	CreateLevel(ctx context.Context, actor identity.Actor, mapID uuid.UUID, in CreateLevelInput) (*types.CareerLevel, error)
	CreateSkill(ctx context.Context, actor identity.Actor, levelID uuid.UUID, in CreateSkillInput) (*types.CareerSkill, error)
	// DeleteSkill soft-deletes the skill and closes its open threads. Returns the closed count.
	DeleteSkill(ctx context.Context, actor identity.Actor, skillID uuid.UUID) (int, error)
	ListKPIs(ctx context.Context, actor identity.Actor) ([]*types.KPIDefinition, error)
	CreateKPI(ctx context.Context, actor identity.Actor, in CreateKPIInput) (*types.KPIDefinition, error)
	Import(ctx context.Context, actor identity.Actor, doc *CatalogDocument) (*ImportResult, error)
}

type catalogService struct {
	db      *gorm.DB
	log     *logger.Logger
	runner  aggregates.TxRunner
	maps    repos.CareerMapRepo
	levels  repos.CareerLevelRepo
	skills  repos.CareerSkillRepo
	kpis    repos.KPIDefinitionRepo
	threads domainagg.SkillThreadAggregate
}

func NewCatalogService(
	db *gorm.DB,
	log *logger.Logger,
	maps repos.CareerMapRepo,
	levels repos.CareerLevelRepo,
	skills repos.CareerSkillRepo,
	kpis repos.KPIDefinitionRepo,
	threads domainagg.SkillThreadAggregate,
) CatalogService {
	return &catalogService{
		db:      db,
		log:     log.With("service", "CatalogService"),
		runner:  aggregates.NewGormTxRunner(db),
		maps:    maps,
		levels:  levels,
		skills:  skills,
		kpis:    kpis,
		threads: threads,
	}
}

func requireReviewer(op string, actor identity.Actor) error {
	if !actor.IsReviewer() {
		return domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonWrongRole, "reviewer role required")
	}
	return nil
}

func (s *catalogService) ListMaps(ctx context.Context, actor identity.Actor, category string) ([]*types.CareerMap, error) {
	const op = "Catalog.ListMaps"
	f := repos.MapFilter{
		CompanyID:     actor.CompanyID,
		PublishedOnly: !actor.IsReviewer(),
		Category:      strings.TrimSpace(category),
	}
	out, err := s.maps.List(dbctx.Context{Ctx: ctx}, f)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

func (s *catalogService) visibleMap(dbc dbctx.Context, op string, actor identity.Actor, mapID uuid.UUID) (*types.CareerMap, error) {
	m, err := s.maps.GetByID(dbc, mapID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if !aggregates.MapVisible(actor, m) {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("map not found: %s", mapID), nil)
	}
	return m, nil
}

func (s *catalogService) GetMap(ctx context.Context, actor identity.Actor, mapID uuid.UUID) (*MapDetail, error) {
	const op = "Catalog.GetMap"
	dbc := dbctx.Context{Ctx: ctx}
	m, err := s.visibleMap(dbc, op, actor, mapID)
	if err != nil {
		return nil, err
	}
	levels, err := s.levels.ListByMap(dbc, m.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	skills, err := s.skills.ListByMap(dbc, m.ID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return buildMapDetail(m, levels, skills), nil
}

func buildMapDetail(m *types.CareerMap, levels []*types.CareerLevel, skills []*types.CareerSkill) *MapDetail {
	career.SortLevels(levels)
	byLevel := map[uuid.UUID][]*types.CareerSkill{}
	for _, sk := range skills {
		byLevel[sk.LevelID] = append(byLevel[sk.LevelID], sk)
	}
	out := &MapDetail{CareerMap: m, Levels: make([]LevelDetail, 0, len(levels))}
	for _, l := range levels {
		ls := byLevel[l.ID]
		career.SortSkills(ls)
		if ls == nil {
			ls = []*types.CareerSkill{}
		}
		out.Levels = append(out.Levels, LevelDetail{CareerLevel: l, Skills: ls})
	}
	return out
}

func (s *catalogService) CreateMap(ctx context.Context, actor identity.Actor, in CreateMapInput) (*types.CareerMap, error) {
	const op = "Catalog.CreateMap"
	if err := requireReviewer(op, actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, "title_required", "title is required", "title")
	}
	companyID := in.CompanyID
	if companyID == uuid.Nil {
		companyID = actor.CompanyID
	}
	if companyID == uuid.Nil {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, "company_required", "company_id is required", "company_id")
	}
	if !actor.SeesCompany(companyID) {
		return nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonNotOwner, "cannot create maps for another company")
	}
	m := &types.CareerMap{
		CompanyID: companyID,
		Title:     title,
		Category:  strings.TrimSpace(in.Category),
		Published: in.Published,
		CreatedBy: actor.ID,
	}
	if _, err := s.maps.Create(dbctx.Context{Ctx: ctx}, []*types.CareerMap{m}); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.Info("career map created", "map_id", m.ID, "company", companyID)
	return m, nil
}

func (s *catalogService) SetPublished(ctx context.Context, actor identity.Actor, mapID uuid.UUID, published bool) (*types.CareerMap, error) {
	const op = "Catalog.SetPublished"
	if err := requireReviewer(op, actor); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	m, err := s.visibleMap(dbc, op, actor, mapID)
	if err != nil {
		return nil, err
	}
	if err := s.maps.UpdateFields(dbc, m.ID, map[string]interface{}{"published": published}); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	m.Published = published
	return m, nil
}

func (s *catalogService) CreateLevel(ctx context.Context, actor identity.Actor, mapID uuid.UUID, in CreateLevelInput) (*types.CareerLevel, error) {
	const op = "Catalog.CreateLevel"
	if err := requireReviewer(op, actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, "title_required", "title is required", "title")
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "salary_min exceeds salary_max", nil)
	}
	var out *types.CareerLevel
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		m, err := s.visibleMap(dbc, op, actor, mapID)
		if err != nil {
			return err
		}
		number := in.LevelNumber
		if number <= 0 {
			max, err := s.levels.MaxLevelNumber(dbc, m.ID)
			if err != nil {
				return err
			}
			number = max + 1
		}
		lvl := &types.CareerLevel{
			MapID:          m.ID,
			LevelNumber:    number,
			Title:          title,
			SalaryMin:      in.SalaryMin,
			SalaryMax:      in.SalaryMax,
			SalaryCurrency: strings.ToUpper(strings.TrimSpace(in.SalaryCurrency)),
			KPITargets:     career.EncodeTargets(in.KPITargets),
		}
		if _, err := s.levels.Create(dbc, []*types.CareerLevel{lvl}); err != nil {
			return err
		}
		out = lvl
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

func (s *catalogService) CreateSkill(ctx context.Context, actor identity.Actor, levelID uuid.UUID, in CreateSkillInput) (*types.CareerSkill, error) {
	const op = "Catalog.CreateSkill"
	if err := requireReviewer(op, actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, "title_required", "title is required", "title")
	}
	skillType, ok := career.ParseSkillType(in.SkillType)
	if !ok {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown skill_type %q", in.SkillType), nil)
	}
	if in.Points < 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "points must be >= 0", nil)
	}
	var out *types.CareerSkill
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		lvl, err := s.levels.GetByID(dbc, levelID)
		if err != nil {
			return err
		}
		if lvl == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("level not found: %s", levelID), nil)
		}
		if _, err := s.visibleMap(dbc, op, actor, lvl.MapID); err != nil {
			return err
		}
		pos := 0
		if in.Position != nil {
			pos = *in.Position
		} else {
			max, err := s.skills.MaxPosition(dbc, lvl.ID)
			if err != nil {
				return err
			}
			pos = max + 1
		}
		sk := &types.CareerSkill{
			LevelID:        lvl.ID,
			MapID:          lvl.MapID,
			Title:          title,
			Description:    strings.TrimSpace(in.Description),
			SkillType:      skillType,
			Points:         in.Points,
			EvidencePolicy: strings.TrimSpace(in.EvidencePolicy),
			Position:       pos,
		}
		if _, err := s.skills.Create(dbc, []*types.CareerSkill{sk}); err != nil {
			return err
		}
		out = sk
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

func (s *catalogService) DeleteSkill(ctx context.Context, actor identity.Actor, skillID uuid.UUID) (int, error) {
	const op = "Catalog.DeleteSkill"
	if err := requireReviewer(op, actor); err != nil {
		return 0, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	sk, err := s.skills.GetByID(dbc, skillID)
	if err != nil {
		return 0, aggregates.MapError(op, err)
	}
	if sk == nil {
		return 0, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("skill not found: %s", skillID), nil)
	}
	if _, err := s.visibleMap(dbc, op, actor, sk.MapID); err != nil {
		return 0, err
	}
	closed, err := s.threads.DeleteSkill(ctx, sk.ID, time.Time{})
	if err != nil {
		return 0, err
	}
	s.log.Info("career skill deleted", "skill", sk.ID, "threads_closed", closed)
	return closed, nil
}

func (s *catalogService) ListKPIs(ctx context.Context, actor identity.Actor) ([]*types.KPIDefinition, error) {
	const op = "Catalog.ListKPIs"
	out, err := s.kpis.ListByCompany(dbctx.Context{Ctx: ctx}, actor.CompanyID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

func (s *catalogService) CreateKPI(ctx context.Context, actor identity.Actor, in CreateKPIInput) (*types.KPIDefinition, error) {
	const op = "Catalog.CreateKPI"
	if err := requireReviewer(op, actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, "name_required", "name is required", "name")
	}
	companyID := in.CompanyID
	if companyID == uuid.Nil {
		companyID = actor.CompanyID
	}
	if companyID == uuid.Nil {
		return nil, domainagg.Reasoned(domainagg.CodeValidation, op, "company_required", "company_id is required", "company_id")
	}
	if !actor.SeesCompany(companyID) {
		return nil, domainagg.Reasoned(domainagg.CodeForbidden, op, domainagg.ReasonNotOwner, "cannot create KPIs for another company")
	}
	k := &types.KPIDefinition{CompanyID: companyID, Name: name, Unit: strings.TrimSpace(in.Unit)}
	if _, err := s.kpis.Create(dbctx.Context{Ctx: ctx}, []*types.KPIDefinition{k}); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return k, nil
}
