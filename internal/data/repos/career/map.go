package career

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type MapFilter struct {
	// CompanyID restricts to one company when set.
	CompanyID     uuid.UUID
	PublishedOnly bool
	Category      string
	Limit         int
}

type CareerMapRepo interface {
	Create(dbc dbctx.Context, rows []*types.CareerMap) ([]*types.CareerMap, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CareerMap, error)
	List(dbc dbctx.Context, f MapFilter) ([]*types.CareerMap, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type careerMapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCareerMapRepo(db *gorm.DB, log *logger.Logger) CareerMapRepo {
	return &careerMapRepo{db: db, log: log.With("repo", "CareerMapRepo")}
}

func (r *careerMapRepo) Create(dbc dbctx.Context, rows []*types.CareerMap) ([]*types.CareerMap, error) {
	if len(rows) == 0 {
		return []*types.CareerMap{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *careerMapRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CareerMap, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out types.CareerMap
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *careerMapRepo) List(dbc dbctx.Context, f MapFilter) ([]*types.CareerMap, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	q := dbc.DB(r.db).Model(&types.CareerMap{})
	if f.CompanyID != uuid.Nil {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.PublishedOnly {
		q = q.Where("published = ?", true)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("category = ?", c)
	}
	var out []*types.CareerMap
	if err := q.Order("created_at ASC").Order("id ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *careerMapRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.CareerMap{}).
		Where("id = ?", id).
		Updates(updates).Error
}
