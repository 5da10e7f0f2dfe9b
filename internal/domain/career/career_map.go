package career

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CareerMap struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	Title     string `gorm:"column:title;not null" json:"title"`
	Category  string `gorm:"column:category;not null;default:'';index" json:"category"`
	Published bool   `gorm:"column:published;not null;default:false;index" json:"published"`

	CreatedBy uuid.UUID `gorm:"type:uuid;column:created_by" json:"created_by"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CareerMap) TableName() string { return "career_map" }

func (m *CareerMap) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
