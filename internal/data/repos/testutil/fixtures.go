package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/domain/career"
)

func SeedMap(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID uuid.UUID, published bool) *types.CareerMap {
	tb.Helper()
	m := &types.CareerMap{
		ID:        uuid.New(),
		CompanyID: companyID,
		Title:     "Backend Engineer",
		Category:  "engineering",
		Published: published,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed map: %v", err)
	}
	return m
}

func SeedLevel(tb testing.TB, ctx context.Context, tx *gorm.DB, mapID uuid.UUID, number int) *types.CareerLevel {
	tb.Helper()
	l := &types.CareerLevel{
		ID:          uuid.New(),
		MapID:       mapID,
		LevelNumber: number,
		Title:       fmt.Sprintf("Level %d", number),
		KPITargets:  career.EncodeTargets(nil),
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed level: %v", err)
	}
	return l
}

func SeedSkill(tb testing.TB, ctx context.Context, tx *gorm.DB, level *types.CareerLevel, position int) *types.CareerSkill {
	tb.Helper()
	s := &types.CareerSkill{
		ID:        uuid.New(),
		LevelID:   level.ID,
		MapID:     level.MapID,
		Title:     fmt.Sprintf("Skill %d.%d", level.LevelNumber, position),
		SkillType: career.SkillTypeTechnical,
		Points:    10,
		Position:  position,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed skill: %v", err)
	}
	return s
}

// Catalog is a seeded map with levels ordered by number and skills per level.
type Catalog struct {
	Map    *types.CareerMap
	Levels []*types.CareerLevel
	Skills map[uuid.UUID][]*types.CareerSkill
}

func (c *Catalog) SkillsOf(i int) []*types.CareerSkill { return c.Skills[c.Levels[i].ID] }

// SeedCatalog creates a published map with one level per entry of skillsPerLevel.
func SeedCatalog(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID uuid.UUID, skillsPerLevel ...int) *Catalog {
	tb.Helper()
	c := &Catalog{
		Map:    SeedMap(tb, ctx, tx, companyID, true),
		Skills: map[uuid.UUID][]*types.CareerSkill{},
	}
	for i, n := range skillsPerLevel {
		lvl := SeedLevel(tb, ctx, tx, c.Map.ID, i+1)
		c.Levels = append(c.Levels, lvl)
		for p := 0; p < n; p++ {
			c.Skills[lvl.ID] = append(c.Skills[lvl.ID], SeedSkill(tb, ctx, tx, lvl, p))
		}
	}
	return c
}

func SeedKPI(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID uuid.UUID, name, unit string) *types.KPIDefinition {
	tb.Helper()
	k := &types.KPIDefinition{ID: uuid.New(), CompanyID: companyID, Name: name, Unit: unit}
	if err := tx.WithContext(ctx).Create(k).Error; err != nil {
		tb.Fatalf("seed kpi: %v", err)
	}
	return k
}

// Clock returns a monotonically increasing UTC time source for ordered fixtures.
func Clock(start time.Time) func() time.Time {
	cur := start.UTC()
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}
