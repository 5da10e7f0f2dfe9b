package progression

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type SurveySubmissionRepo interface {
	Create(dbc dbctx.Context, rows []*types.SurveySubmission) ([]*types.SurveySubmission, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SurveySubmission, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.SurveySubmission, error)
	GetPending(dbc dbctx.Context, subjectID uuid.UUID, scope progression.Scope) (*types.SurveySubmission, error)
	GetLatest(dbc dbctx.Context, subjectID uuid.UUID, scope progression.Scope) (*types.SurveySubmission, error)
	MaxRound(dbc dbctx.Context, subjectID uuid.UUID, scope progression.Scope) (int, error)
	// ListBySubjectMap returns every submission of the subject whose scope lies in the map.
	ListBySubjectMap(dbc dbctx.Context, subjectID, mapID uuid.UUID) ([]*types.SurveySubmission, error)
	// ListPending is the reviewer queue, oldest first. Empty mapIDs means every map.
	ListPending(dbc dbctx.Context, mapIDs []uuid.UUID, limit int) ([]*types.SurveySubmission, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type surveySubmissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveySubmissionRepo(db *gorm.DB, log *logger.Logger) SurveySubmissionRepo {
	return &surveySubmissionRepo{db: db, log: log.With("repo", "SurveySubmissionRepo")}
}

func (r *surveySubmissionRepo) Create(dbc dbctx.Context, rows []*types.SurveySubmission) ([]*types.SurveySubmission, error) {
	if len(rows) == 0 {
		return []*types.SurveySubmission{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *surveySubmissionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SurveySubmission, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	return r.take(dbc.DB(r.db).Where("id = ?", id))
}

func (r *surveySubmissionRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.SurveySubmission, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID required dbc.Tx")
	}
	return r.take(dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *surveySubmissionRepo) GetPending(dbc dbctx.Context, subjectID uuid.UUID, scope progression.Scope) (*types.SurveySubmission, error) {
	if subjectID == uuid.Nil || !scope.Valid() {
		return nil, fmt.Errorf("missing subject_id or scope")
	}
	return r.take(dbc.DB(r.db).
		Where("subject_id = ? AND scope_type = ? AND scope_id = ? AND status = ?",
			subjectID, scope.Type, scope.ID, progression.SubmissionPending))
}

func (r *surveySubmissionRepo) GetLatest(dbc dbctx.Context, subjectID uuid.UUID, scope progression.Scope) (*types.SurveySubmission, error) {
	if subjectID == uuid.Nil || !scope.Valid() {
		return nil, fmt.Errorf("missing subject_id or scope")
	}
	var out []*types.SurveySubmission
	if err := dbc.DB(r.db).
		Model(&types.SurveySubmission{}).
		Where("subject_id = ? AND scope_type = ? AND scope_id = ?", subjectID, scope.Type, scope.ID).
		Order("round DESC").
		Order("submitted_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *surveySubmissionRepo) MaxRound(dbc dbctx.Context, subjectID uuid.UUID, scope progression.Scope) (int, error) {
	if subjectID == uuid.Nil || !scope.Valid() {
		return 0, fmt.Errorf("missing subject_id or scope")
	}
	var maxRound int
	if err := dbc.DB(r.db).
		Model(&types.SurveySubmission{}).
		Select("COALESCE(MAX(round), 0)").
		Where("subject_id = ? AND scope_type = ? AND scope_id = ?", subjectID, scope.Type, scope.ID).
		Scan(&maxRound).Error; err != nil {
		return 0, err
	}
	return maxRound, nil
}

func (r *surveySubmissionRepo) ListBySubjectMap(dbc dbctx.Context, subjectID, mapID uuid.UUID) ([]*types.SurveySubmission, error) {
	if subjectID == uuid.Nil || mapID == uuid.Nil {
		return nil, fmt.Errorf("missing subject_id or map_id")
	}
	var out []*types.SurveySubmission
	if err := dbc.DB(r.db).
		Model(&types.SurveySubmission{}).
		Where("subject_id = ? AND map_id = ?", subjectID, mapID).
		Order("submitted_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *surveySubmissionRepo) ListPending(dbc dbctx.Context, mapIDs []uuid.UUID, limit int) ([]*types.SurveySubmission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := dbc.DB(r.db).
		Model(&types.SurveySubmission{}).
		Where("status = ?", progression.SubmissionPending)
	if len(mapIDs) > 0 {
		q = q.Where("map_id IN ?", mapIDs)
	}
	var out []*types.SurveySubmission
	if err := q.Order("submitted_at ASC").Order("id ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *surveySubmissionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.SurveySubmission{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *surveySubmissionRepo) take(q *gorm.DB) (*types.SurveySubmission, error) {
	var out types.SurveySubmission
	err := q.Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
