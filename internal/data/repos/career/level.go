package career

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/domain/career"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type CareerLevelRepo interface {
	Create(dbc dbctx.Context, rows []*types.CareerLevel) ([]*types.CareerLevel, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CareerLevel, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CareerLevel, error)
	// ListByMap returns levels ordered by level number with a stable tiebreak.
	ListByMap(dbc dbctx.Context, mapID uuid.UUID) ([]*types.CareerLevel, error)
	MaxLevelNumber(dbc dbctx.Context, mapID uuid.UUID) (int, error)
}

type careerLevelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCareerLevelRepo(db *gorm.DB, log *logger.Logger) CareerLevelRepo {
	return &careerLevelRepo{db: db, log: log.With("repo", "CareerLevelRepo")}
}

func (r *careerLevelRepo) Create(dbc dbctx.Context, rows []*types.CareerLevel) ([]*types.CareerLevel, error) {
	if len(rows) == 0 {
		return []*types.CareerLevel{}, nil
	}
	for _, row := range rows {
		if row != nil && len(row.KPITargets) == 0 {
			row.KPITargets = career.EncodeTargets(nil)
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *careerLevelRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CareerLevel, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out types.CareerLevel
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *careerLevelRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CareerLevel, error) {
	if len(ids) == 0 {
		return []*types.CareerLevel{}, nil
	}
	var out []*types.CareerLevel
	if err := dbc.DB(r.db).
		Model(&types.CareerLevel{}).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	career.SortLevels(out)
	return out, nil
}

func (r *careerLevelRepo) ListByMap(dbc dbctx.Context, mapID uuid.UUID) ([]*types.CareerLevel, error) {
	if mapID == uuid.Nil {
		return nil, fmt.Errorf("missing map_id")
	}
	var out []*types.CareerLevel
	if err := dbc.DB(r.db).
		Model(&types.CareerLevel{}).
		Where("map_id = ?", mapID).
		Order("level_number ASC").
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	career.SortLevels(out)
	return out, nil
}

func (r *careerLevelRepo) MaxLevelNumber(dbc dbctx.Context, mapID uuid.UUID) (int, error) {
	if mapID == uuid.Nil {
		return 0, fmt.Errorf("missing map_id")
	}
	var maxNum int
	if err := dbc.DB(r.db).
		Model(&types.CareerLevel{}).
		Select("COALESCE(MAX(level_number), 0)").
		Where("map_id = ?", mapID).
		Scan(&maxNum).Error; err != nil {
		return 0, err
	}
	return maxNum, nil
}
