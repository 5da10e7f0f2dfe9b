package career

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSortLevelsStableTiebreak(t *testing.T) {
	now := time.Now().UTC()
	a := &CareerLevel{ID: uuid.New(), LevelNumber: 2, CreatedAt: now}
	b := &CareerLevel{ID: uuid.New(), LevelNumber: 1, CreatedAt: now.Add(time.Minute)}
	c := &CareerLevel{ID: uuid.New(), LevelNumber: 1, CreatedAt: now}
	levels := []*CareerLevel{a, b, c}
	SortLevels(levels)
	if levels[0] != c || levels[1] != b || levels[2] != a {
		t.Fatalf("SortLevels: unexpected order %d,%d,%d", levels[0].LevelNumber, levels[1].LevelNumber, levels[2].LevelNumber)
	}
}

func TestTargetsRoundTrip(t *testing.T) {
	kpi := uuid.New()
	lvl := &CareerLevel{KPITargets: EncodeTargets([]KPITarget{{KPIID: kpi, Target: 12.5}})}
	got := lvl.Targets()
	if len(got) != 1 || got[0].KPIID != kpi || got[0].Target != 12.5 {
		t.Fatalf("Targets: got=%+v", got)
	}
	if (&CareerLevel{}).Targets() != nil {
		t.Fatalf("Targets on empty level should be nil")
	}
}

func TestParseSkillType(t *testing.T) {
	if st, ok := ParseSkillType(""); !ok || st != SkillTypeTechnical {
		t.Fatalf("empty skill type should default to technical")
	}
	if _, ok := ParseSkillType("leadership"); ok {
		t.Fatalf("unknown skill type accepted")
	}
}
