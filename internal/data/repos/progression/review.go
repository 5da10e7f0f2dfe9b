package progression

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type SurveySkillReviewRepo interface {
	Create(dbc dbctx.Context, rows []*types.SurveySkillReview) ([]*types.SurveySkillReview, error)
	GetBySubmissionSkill(dbc dbctx.Context, submissionID, skillID uuid.UUID) (*types.SurveySkillReview, error)
	ListBySubmission(dbc dbctx.Context, submissionID uuid.UUID) ([]*types.SurveySkillReview, error)
	// ListBySubmissions groups review rows by submission id.
	ListBySubmissions(dbc dbctx.Context, submissionIDs []uuid.UUID) (map[uuid.UUID][]*types.SurveySkillReview, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type surveySkillReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveySkillReviewRepo(db *gorm.DB, log *logger.Logger) SurveySkillReviewRepo {
	return &surveySkillReviewRepo{db: db, log: log.With("repo", "SurveySkillReviewRepo")}
}

func (r *surveySkillReviewRepo) Create(dbc dbctx.Context, rows []*types.SurveySkillReview) ([]*types.SurveySkillReview, error) {
	if len(rows) == 0 {
		return []*types.SurveySkillReview{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *surveySkillReviewRepo) GetBySubmissionSkill(dbc dbctx.Context, submissionID, skillID uuid.UUID) (*types.SurveySkillReview, error) {
	if submissionID == uuid.Nil || skillID == uuid.Nil {
		return nil, fmt.Errorf("missing submission_id or skill_id")
	}
	var out types.SurveySkillReview
	err := dbc.DB(r.db).
		Where("submission_id = ? AND skill_id = ?", submissionID, skillID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *surveySkillReviewRepo) ListBySubmission(dbc dbctx.Context, submissionID uuid.UUID) ([]*types.SurveySkillReview, error) {
	if submissionID == uuid.Nil {
		return nil, fmt.Errorf("missing submission_id")
	}
	var out []*types.SurveySkillReview
	if err := dbc.DB(r.db).
		Model(&types.SurveySkillReview{}).
		Where("submission_id = ?", submissionID).
		Order("skill_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *surveySkillReviewRepo) ListBySubmissions(dbc dbctx.Context, submissionIDs []uuid.UUID) (map[uuid.UUID][]*types.SurveySkillReview, error) {
	out := map[uuid.UUID][]*types.SurveySkillReview{}
	if len(submissionIDs) == 0 {
		return out, nil
	}
	var rows []*types.SurveySkillReview
	if err := dbc.DB(r.db).
		Model(&types.SurveySkillReview{}).
		Where("submission_id IN ?", submissionIDs).
		Order("skill_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SubmissionID] = append(out[row.SubmissionID], row)
	}
	return out, nil
}

func (r *surveySkillReviewRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.SurveySkillReview{}).
		Where("id = ?", id).
		Updates(updates).Error
}
