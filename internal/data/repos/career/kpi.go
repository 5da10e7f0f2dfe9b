package career

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type KPIDefinitionRepo interface {
	Create(dbc dbctx.Context, rows []*types.KPIDefinition) ([]*types.KPIDefinition, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.KPIDefinition, error)
	ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.KPIDefinition, error)
}

type kpiDefinitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKPIDefinitionRepo(db *gorm.DB, log *logger.Logger) KPIDefinitionRepo {
	return &kpiDefinitionRepo{db: db, log: log.With("repo", "KPIDefinitionRepo")}
}

func (r *kpiDefinitionRepo) Create(dbc dbctx.Context, rows []*types.KPIDefinition) ([]*types.KPIDefinition, error) {
	if len(rows) == 0 {
		return []*types.KPIDefinition{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *kpiDefinitionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.KPIDefinition, error) {
	if len(ids) == 0 {
		return []*types.KPIDefinition{}, nil
	}
	var out []*types.KPIDefinition
	if err := dbc.DB(r.db).
		Model(&types.KPIDefinition{}).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByCompany with a nil company lists every definition.
func (r *kpiDefinitionRepo) ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.KPIDefinition, error) {
	q := dbc.DB(r.db).Model(&types.KPIDefinition{})
	if companyID != uuid.Nil {
		q = q.Where("company_id = ?", companyID)
	}
	var out []*types.KPIDefinition
	if err := q.Order("name ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list kpis: %w", err)
	}
	return out, nil
}
