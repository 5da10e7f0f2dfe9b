package progression

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionNotSubmitted SubmissionStatus = "not_submitted"
	SubmissionPending      SubmissionStatus = "pending"
	SubmissionReviewed     SubmissionStatus = "reviewed"
)

type SurveySubmission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_survey_submission_subject_scope,priority:1" json:"subject_id"`

	ScopeType ScopeType `gorm:"column:scope_type;not null;index:idx_survey_submission_subject_scope,priority:2" json:"scope_type"`
	ScopeID   uuid.UUID `gorm:"type:uuid;column:scope_id;not null;index:idx_survey_submission_subject_scope,priority:3" json:"scope_id"`
	MapID     uuid.UUID `gorm:"type:uuid;column:map_id;not null;index" json:"map_id"`

	Round  int              `gorm:"column:round;not null;default:1" json:"round"`
	Status SubmissionStatus `gorm:"column:status;not null;index" json:"status"`

	// map[skillID]Confidence
	Answers datatypes.JSON `gorm:"column:answers;not null" json:"answers"`

	// Optimistic concurrency for per-submission decision writes.
	Version int `gorm:"column:version;not null;default:0" json:"version"`

	SubmittedAt time.Time  `gorm:"column:submitted_at;not null" json:"submitted_at"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	ReviewedSkills  []*SurveySkillReview `gorm:"-" json:"reviewed_skills"`
	ClaimedSkillIDs []uuid.UUID          `gorm:"-" json:"claimed_skill_ids"`
	AwardedSkillIDs []uuid.UUID          `gorm:"-" json:"awarded_skill_ids"`
}

func (SurveySubmission) TableName() string { return "survey_submission" }

func (s *SurveySubmission) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *SurveySubmission) Scope() Scope { return Scope{Type: s.ScopeType, ID: s.ScopeID} }

func (s *SurveySubmission) AnswerSet() map[uuid.UUID]Confidence {
	out := map[uuid.UUID]Confidence{}
	if s == nil || len(s.Answers) == 0 {
		return out
	}
	raw := map[string]Confidence{}
	if err := json.Unmarshal(s.Answers, &raw); err != nil {
		return out
	}
	for k, v := range raw {
		if id, err := uuid.Parse(k); err == nil {
			out[id] = v
		}
	}
	return out
}

func EncodeAnswers(answers map[uuid.UUID]Confidence) datatypes.JSON {
	raw := make(map[string]Confidence, len(answers))
	for k, v := range answers {
		raw[k.String()] = v
	}
	b, _ := json.Marshal(raw)
	return datatypes.JSON(b)
}

// Attach sets the review rows and fills the derived claimed/awarded sets.
func (s *SurveySubmission) Attach(reviews []*SurveySkillReview) {
	if s == nil {
		return
	}
	if reviews == nil {
		reviews = []*SurveySkillReview{}
	}
	s.ReviewedSkills = reviews
	s.ClaimedSkillIDs = Claimed(reviews)
	s.AwardedSkillIDs = Awarded(reviews)
}
