package progression

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Decision string

const (
	DecisionPending Decision = "pending"
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseAction accepts only the two reviewer actions.
func ParseAction(raw string) (Decision, bool) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(raw))); d {
	case DecisionApprove, DecisionReject:
		return d, true
	case "approved":
		return DecisionApprove, true
	case "rejected":
		return DecisionReject, true
	}
	return "", false
}

// SurveySkillReview is the current decision for one claimed skill of a submission.
type SurveySkillReview struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_survey_skill_review_unique,priority:1" json:"-"`
	SkillID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_survey_skill_review_unique,priority:2" json:"skill_id"`

	Decision   Decision   `gorm:"column:decision;not null;default:'pending'" json:"decision"`
	Comment    string     `gorm:"column:comment;type:text;not null;default:''" json:"comment"`
	ReviewerID *uuid.UUID `gorm:"type:uuid;column:reviewer_id" json:"reviewer_id,omitempty"`
	DecidedAt  *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

func (SurveySkillReview) TableName() string { return "survey_skill_review" }

func (r *SurveySkillReview) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// SurveyReviewEvent is the append-only history of every decision made.
type SurveyReviewEvent struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;index" json:"submission_id"`
	SkillID      uuid.UUID `gorm:"type:uuid;not null;index" json:"skill_id"`
	ReviewerID   uuid.UUID `gorm:"type:uuid;not null" json:"reviewer_id"`
	Decision     Decision  `gorm:"column:decision;not null" json:"decision"`
	Comment      string    `gorm:"column:comment;type:text;not null;default:''" json:"comment"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
}

func (SurveyReviewEvent) TableName() string { return "survey_review_event" }

func (e *SurveyReviewEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
