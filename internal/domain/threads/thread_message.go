package threads

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
)

// ThreadMessage is append-only. System messages may carry an empty body.
type ThreadMessage struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_thread_message_thread_seq,priority:1" json:"thread_id"`
	Seq      int64     `gorm:"column:seq;not null;uniqueIndex:idx_thread_message_thread_seq,priority:2" json:"seq"`
	Round    int       `gorm:"column:round;not null" json:"round"`

	SenderRole identity.Role `gorm:"column:sender_role;not null" json:"sender_role"`
	SenderID   uuid.UUID     `gorm:"type:uuid;column:sender_id" json:"sender_id"`
	Body       string        `gorm:"column:body;type:text;not null;default:''" json:"body"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (ThreadMessage) TableName() string { return "skill_thread_message" }

func (m *ThreadMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
