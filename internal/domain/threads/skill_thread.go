package threads

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusClosed   Status = "closed"
)

// Requestable reports whether a student request opens a new round from this status.
func (s Status) Requestable() bool { return s == StatusRejected || s == StatusClosed }

// SkillThread is the approval conversation for one (student, skill) pair.
// Re-requests reuse the row and bump Round.
type SkillThread struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SkillID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_skill_thread_student_skill,priority:2;index" json:"skill_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_skill_thread_student_skill,priority:1" json:"student_id"`
	LevelID   uuid.UUID `gorm:"type:uuid;not null;index" json:"level_id"`
	MapID     uuid.UUID `gorm:"type:uuid;not null;index" json:"map_id"`

	Status Status `gorm:"column:status;not null;index" json:"status"`
	Round  int    `gorm:"column:round;not null;default:1" json:"round"`

	// Concurrency-safe per-thread sequencing.
	NextSeq int64 `gorm:"column:next_seq;not null;default:0" json:"-"`

	ClosedReason  string    `gorm:"column:closed_reason;not null;default:''" json:"closed_reason,omitempty"`
	LastMessageAt time.Time `gorm:"column:last_message_at;not null;index" json:"last_message_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SkillThread) TableName() string { return "skill_thread" }

func (t *SkillThread) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
