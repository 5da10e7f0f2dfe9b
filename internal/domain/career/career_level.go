package career

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CareerLevel struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MapID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_career_level_map_number,priority:1" json:"map_id"`

	LevelNumber int    `gorm:"column:level_number;not null;index:idx_career_level_map_number,priority:2" json:"level_number"`
	Title       string `gorm:"column:title;not null" json:"title"`

	SalaryMin      *int64 `gorm:"column:salary_min" json:"salary_min,omitempty"`
	SalaryMax      *int64 `gorm:"column:salary_max" json:"salary_max,omitempty"`
	SalaryCurrency string `gorm:"column:salary_currency;not null;default:''" json:"salary_currency,omitempty"`

	// []KPITarget
	KPITargets datatypes.JSON `gorm:"column:kpi_targets" json:"kpi_targets,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CareerLevel) TableName() string { return "career_level" }

func (l *CareerLevel) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type KPITarget struct {
	KPIID  uuid.UUID `json:"kpi_id"`
	Target float64   `json:"target"`
}

func (l *CareerLevel) Targets() []KPITarget {
	if l == nil || len(l.KPITargets) == 0 {
		return nil
	}
	var out []KPITarget
	if err := json.Unmarshal(l.KPITargets, &out); err != nil {
		return nil
	}
	return out
}

func EncodeTargets(targets []KPITarget) datatypes.JSON {
	if len(targets) == 0 {
		return datatypes.JSON([]byte("[]"))
	}
	raw, _ := json.Marshal(targets)
	return datatypes.JSON(raw)
}

// SortLevels applies the client-side stable tiebreak on top of storage order.
func SortLevels(levels []*CareerLevel) {
	sort.SliceStable(levels, func(i, j int) bool {
		a, b := levels[i], levels[j]
		if a.LevelNumber != b.LevelNumber {
			return a.LevelNumber < b.LevelNumber
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
