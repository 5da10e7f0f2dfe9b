package career

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KPIDefinition struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Unit      string    `gorm:"column:unit;not null;default:''" json:"unit"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (KPIDefinition) TableName() string { return "kpi_definition" }

func (k *KPIDefinition) BeforeCreate(*gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}
