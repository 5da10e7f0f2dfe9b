package career

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SkillType string

const (
	SkillTypeTechnical     SkillType = "technical"
	SkillTypeCommunication SkillType = "communication"
)

func ParseSkillType(raw string) (SkillType, bool) {
	switch t := SkillType(strings.ToLower(strings.TrimSpace(raw))); t {
	case SkillTypeTechnical, SkillTypeCommunication:
		return t, true
	case "":
		return SkillTypeTechnical, true
	}
	return "", false
}

type CareerSkill struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LevelID uuid.UUID `gorm:"type:uuid;not null;index" json:"level_id"`
	MapID   uuid.UUID `gorm:"type:uuid;not null;index" json:"map_id"`

	Title          string    `gorm:"column:title;not null" json:"title"`
	Description    string    `gorm:"column:description;type:text;not null;default:''" json:"description"`
	SkillType      SkillType `gorm:"column:skill_type;not null;default:'technical'" json:"skill_type"`
	Points         int       `gorm:"column:points;not null;default:0" json:"points"`
	EvidencePolicy string    `gorm:"column:evidence_policy;not null;default:''" json:"evidence_policy,omitempty"`
	Position       int       `gorm:"column:position;not null;default:0" json:"position"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CareerSkill) TableName() string { return "career_skill" }

func (s *CareerSkill) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func SortSkills(skills []*CareerSkill) {
	sort.SliceStable(skills, func(i, j int) bool {
		a, b := skills[i], skills[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
