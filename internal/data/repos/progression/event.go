package progression

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

// SurveyReviewEventRepo is append-only.
type SurveyReviewEventRepo interface {
	Create(dbc dbctx.Context, rows []*types.SurveyReviewEvent) ([]*types.SurveyReviewEvent, error)
	ListBySubmission(dbc dbctx.Context, submissionID uuid.UUID) ([]*types.SurveyReviewEvent, error)
}

type surveyReviewEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveyReviewEventRepo(db *gorm.DB, log *logger.Logger) SurveyReviewEventRepo {
	return &surveyReviewEventRepo{db: db, log: log.With("repo", "SurveyReviewEventRepo")}
}

func (r *surveyReviewEventRepo) Create(dbc dbctx.Context, rows []*types.SurveyReviewEvent) ([]*types.SurveyReviewEvent, error) {
	if len(rows) == 0 {
		return []*types.SurveyReviewEvent{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *surveyReviewEventRepo) ListBySubmission(dbc dbctx.Context, submissionID uuid.UUID) ([]*types.SurveyReviewEvent, error) {
	if submissionID == uuid.Nil {
		return nil, fmt.Errorf("missing submission_id")
	}
	var out []*types.SurveyReviewEvent
	if err := dbc.DB(r.db).
		Model(&types.SurveyReviewEvent{}).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
