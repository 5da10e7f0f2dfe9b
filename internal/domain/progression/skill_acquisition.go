package progression

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SkillAcquisition permanently marks a skill acquired for a student via an approved thread.
type SkillAcquisition struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_skill_acquisition_student_skill,priority:1" json:"student_id"`
	SkillID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_skill_acquisition_student_skill,priority:2;index" json:"skill_id"`
	ThreadID   uuid.UUID `gorm:"type:uuid;not null" json:"thread_id"`
	ApprovedBy uuid.UUID `gorm:"type:uuid;not null" json:"approved_by"`

	AcquiredAt time.Time `gorm:"not null" json:"acquired_at"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (SkillAcquisition) TableName() string { return "skill_acquisition" }

func (a *SkillAcquisition) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
