package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	repotest "github.com/yungbote/careerladder-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
	"github.com/yungbote/careerladder-backend/internal/domain/career"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/domain/threads"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
)

func TestCatalogAuthoringAndVisibility(t *testing.T) {
	st := newStack(t, nil)
	ctx := context.Background()
	companyID := uuid.New()
	admin := actor(identity.RoleAdmin, companyID)
	stu := actor(identity.RoleStudent, companyID)

	_, err := st.catalog.CreateMap(ctx, stu, CreateMapInput{Title: "Install"})
	requireCode(t, err, domainagg.CodeForbidden)
	_, err = st.catalog.CreateMap(ctx, admin, CreateMapInput{Title: "  "})
	if !domainagg.IsReason(err, "title_required") {
		t.Fatalf("expected title_required, got %v", err)
	}

	m, err := st.catalog.CreateMap(ctx, admin, CreateMapInput{Title: "Install", Category: "install"})
	if err != nil {
		t.Fatalf("CreateMap: %v", err)
	}
	if m.CompanyID != companyID || m.Published {
		t.Fatalf("map should default to actor company and draft")
	}

	l1, err := st.catalog.CreateLevel(ctx, admin, m.ID, CreateLevelInput{Title: "Apprentice"})
	if err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}
	l2, err := st.catalog.CreateLevel(ctx, admin, m.ID, CreateLevelInput{Title: "Journeyman"})
	if err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}
	if l1.LevelNumber != 1 || l2.LevelNumber != 2 {
		t.Fatalf("levels should append, got %d %d", l1.LevelNumber, l2.LevelNumber)
	}
	lo, hi := int64(50000), int64(40000)
	_, err = st.catalog.CreateLevel(ctx, admin, m.ID, CreateLevelInput{Title: "Bad", SalaryMin: &lo, SalaryMax: &hi})
	requireCode(t, err, domainagg.CodeValidation)

	a, err := st.catalog.CreateSkill(ctx, admin, l1.ID, CreateSkillInput{Title: "Site survey"})
	if err != nil {
		t.Fatalf("CreateSkill: %v", err)
	}
	b, err := st.catalog.CreateSkill(ctx, admin, l1.ID, CreateSkillInput{Title: "Talk to customer", SkillType: "communication"})
	if err != nil {
		t.Fatalf("CreateSkill: %v", err)
	}
	if a.Position != 0 || b.Position != 1 || a.SkillType != career.SkillTypeTechnical {
		t.Fatalf("unexpected skills a=%d/%s b=%d", a.Position, a.SkillType, b.Position)
	}
	_, err = st.catalog.CreateSkill(ctx, admin, l1.ID, CreateSkillInput{Title: "x", SkillType: "juggling"})
	requireCode(t, err, domainagg.CodeValidation)

	// Drafts are invisible to students.
	_, err = st.catalog.GetMap(ctx, stu, m.ID)
	requireCode(t, err, domainagg.CodeNotFound)
	list, err := st.catalog.ListMaps(ctx, stu, "")
	if err != nil || len(list) != 0 {
		t.Fatalf("student should see no drafts, got %d %v", len(list), err)
	}

	if _, err := st.catalog.SetPublished(ctx, admin, m.ID, true); err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	detail, err := st.catalog.GetMap(ctx, stu, m.ID)
	if err != nil {
		t.Fatalf("GetMap: %v", err)
	}
	if len(detail.Levels) != 2 || len(detail.Levels[0].Skills) != 2 || len(detail.Levels[1].Skills) != 0 {
		t.Fatalf("unexpected detail shape")
	}
	if detail.Levels[0].Skills[1].ID != b.ID {
		t.Fatalf("skills should be in position order")
	}

	_, err = st.catalog.GetMap(ctx, actor(identity.RoleAdmin, uuid.New()), m.ID)
	requireCode(t, err, domainagg.CodeNotFound)

	k, err := st.catalog.CreateKPI(ctx, admin, CreateKPIInput{Name: "Installs", Unit: "per week"})
	if err != nil {
		t.Fatalf("CreateKPI: %v", err)
	}
	kpis, err := st.catalog.ListKPIs(ctx, stu)
	if err != nil || len(kpis) != 1 || kpis[0].ID != k.ID {
		t.Fatalf("ListKPIs: %d %v", len(kpis), err)
	}
}

func TestCatalogDeleteSkillClosesThreads(t *testing.T) {
	st := newStack(t, nil)
	ctx := context.Background()
	companyID := uuid.New()
	cat := repotest.SeedCatalog(t, ctx, st.db, companyID, 2)
	skill := cat.SkillsOf(0)[0]
	admin := actor(identity.RoleAdmin, companyID)

	for i := 0; i < 2; i++ {
		stu := actor(identity.RoleStudent, companyID)
		if _, err := st.surveys.Submit(ctx, stu, progression.MapScope(cat.Map.ID), answers(cat.SkillsOf(0))); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if _, err := st.threads.Request(ctx, stu, skill.ID, "please review"); err != nil {
			t.Fatalf("Request: %v", err)
		}
	}

	_, err := st.catalog.DeleteSkill(ctx, actor(identity.RoleStudent, companyID), skill.ID)
	requireCode(t, err, domainagg.CodeForbidden)

	closed, err := st.catalog.DeleteSkill(ctx, admin, skill.ID)
	if err != nil {
		t.Fatalf("DeleteSkill: %v", err)
	}
	if closed != 2 {
		t.Fatalf("expected 2 closed threads, got %d", closed)
	}
	open, err := st.threadRepo.ListPending(dbctx.Context{Ctx: ctx}, nil, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	for _, th := range open {
		if th.SkillID == skill.ID {
			t.Fatalf("thread %s still open", th.ID)
		}
	}

	detail, err := st.catalog.GetMap(ctx, admin, cat.Map.ID)
	if err != nil {
		t.Fatalf("GetMap: %v", err)
	}
	if len(detail.Levels[0].Skills) != 1 {
		t.Fatalf("deleted skill should be hidden")
	}
	_, err = st.catalog.DeleteSkill(ctx, admin, skill.ID)
	requireCode(t, err, domainagg.CodeNotFound)
}

const catalogYAML = `
kpis:
  - name: Installs per week
    unit: installs
maps:
  - title: Install
    category: install
    published: true
    levels:
      - title: Apprentice
        salary_min: 40000
        salary_max: 50000
        salary_currency: usd
        kpi_targets: {installs per week: 5}
        skills:
          - title: Site survey
          - title: Customer walkthrough
            type: communication
            points: 2
      - title: Journeyman
        skills:
          - title: Panel upgrade
`

func TestCatalogImportYAML(t *testing.T) {
	st := newStack(t, nil)
	ctx := context.Background()
	companyID := uuid.New()
	admin := actor(identity.RoleCompany, companyID)

	doc, err := ParseCatalogYAML(strings.NewReader(catalogYAML))
	if err != nil {
		t.Fatalf("ParseCatalogYAML: %v", err)
	}
	res, err := st.catalog.Import(ctx, admin, doc)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if *res != (ImportResult{Maps: 1, Levels: 2, Skills: 3, KPIs: 1}) {
		t.Fatalf("unexpected result %+v", res)
	}

	// KPIs are reused by name on a second import.
	res, err = st.catalog.Import(ctx, admin, doc)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if res.KPIs != 0 || res.Maps != 1 {
		t.Fatalf("expected kpi reuse, got %+v", res)
	}

	maps, err := st.catalog.ListMaps(ctx, actor(identity.RoleStudent, companyID), "install")
	if err != nil || len(maps) != 2 {
		t.Fatalf("ListMaps: %d %v", len(maps), err)
	}
	detail, err := st.catalog.GetMap(ctx, admin, maps[0].ID)
	if err != nil {
		t.Fatalf("GetMap: %v", err)
	}
	lvl := detail.Levels[0]
	if lvl.LevelNumber != 1 || lvl.SalaryCurrency != "USD" || len(lvl.Targets()) != 1 || lvl.Targets()[0].Target != 5 {
		t.Fatalf("unexpected level %+v", lvl.CareerLevel)
	}
	if lvl.Skills[1].SkillType != career.SkillTypeCommunication || lvl.Skills[1].Points != 2 {
		t.Fatalf("unexpected skill %+v", lvl.Skills[1])
	}

	if _, err := ParseCatalogYAML(strings.NewReader("maps: []\nbogus: 1\n")); err == nil {
		t.Fatalf("unknown keys should be rejected")
	}
	if _, err := ParseCatalogYAML(strings.NewReader("")); err == nil {
		t.Fatalf("empty document should be rejected")
	}

	bad, _ := ParseCatalogYAML(strings.NewReader("maps:\n  - title: X\n    levels:\n      - kpi_targets: {nope: 1}\n"))
	_, err = st.catalog.Import(ctx, admin, bad)
	requireCode(t, err, domainagg.CodeValidation)
	_, err = st.catalog.Import(ctx, actor(identity.RoleStudent, companyID), doc)
	requireCode(t, err, domainagg.CodeForbidden)
}

func TestCatalogDeleteSkillKeepsAcquiredThreads(t *testing.T) {
	st := newStack(t, nil)
	ctx := context.Background()
	companyID := uuid.New()
	cat := repotest.SeedCatalog(t, ctx, st.db, companyID, 1)
	skill := cat.SkillsOf(0)[0]
	stu := actor(identity.RoleStudent, companyID)
	admin := actor(identity.RoleAdmin, companyID)
	if _, err := st.surveys.Submit(ctx, stu, progression.MapScope(cat.Map.ID), answers(cat.SkillsOf(0))); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	view, err := st.threads.Request(ctx, stu, skill.ID, "done")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if _, err := st.threads.Review(ctx, admin, view.Thread.ID, "approve", ""); err != nil {
		t.Fatalf("Review: %v", err)
	}
	closed, err := st.catalog.DeleteSkill(ctx, admin, skill.ID)
	if err != nil || closed != 0 {
		t.Fatalf("approved thread must stay approved: closed=%d err=%v", closed, err)
	}
	th, err := st.threadRepo.GetByID(dbctx.Context{Ctx: ctx}, view.Thread.ID)
	if err != nil || th == nil || th.Status != threads.StatusApproved {
		t.Fatalf("expected approved thread, got %+v %v", th, err)
	}
}
