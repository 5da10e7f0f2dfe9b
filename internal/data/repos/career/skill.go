package career

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/domain/career"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type CareerSkillRepo interface {
	Create(dbc dbctx.Context, rows []*types.CareerSkill) ([]*types.CareerSkill, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CareerSkill, error)
	// LockByID takes an exclusive row lock; LockSharedByID lets concurrent readers hold it together.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.CareerSkill, error)
	LockSharedByID(dbc dbctx.Context, id uuid.UUID) (*types.CareerSkill, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CareerSkill, error)
	ListByMap(dbc dbctx.Context, mapID uuid.UUID) ([]*types.CareerSkill, error)
	ListByLevel(dbc dbctx.Context, levelID uuid.UUID) ([]*types.CareerSkill, error)
	MaxPosition(dbc dbctx.Context, levelID uuid.UUID) (int, error)
	SoftDelete(dbc dbctx.Context, id uuid.UUID) error
}

type careerSkillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCareerSkillRepo(db *gorm.DB, log *logger.Logger) CareerSkillRepo {
	return &careerSkillRepo{db: db, log: log.With("repo", "CareerSkillRepo")}
}

func (r *careerSkillRepo) Create(dbc dbctx.Context, rows []*types.CareerSkill) ([]*types.CareerSkill, error) {
	if len(rows) == 0 {
		return []*types.CareerSkill{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *careerSkillRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CareerSkill, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out types.CareerSkill
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *careerSkillRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.CareerSkill, error) {
	return r.lock(dbc, id, "UPDATE")
}

func (r *careerSkillRepo) LockSharedByID(dbc dbctx.Context, id uuid.UUID) (*types.CareerSkill, error) {
	return r.lock(dbc, id, "SHARE")
}

func (r *careerSkillRepo) lock(dbc dbctx.Context, id uuid.UUID, strength string) (*types.CareerSkill, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("lock skill requires dbc.Tx")
	}
	var out types.CareerSkill
	err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: strength}).
		Where("id = ?", id).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *careerSkillRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CareerSkill, error) {
	if len(ids) == 0 {
		return []*types.CareerSkill{}, nil
	}
	var out []*types.CareerSkill
	if err := dbc.DB(r.db).
		Model(&types.CareerSkill{}).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	career.SortSkills(out)
	return out, nil
}

// ListByMap returns every skill of the map ordered by position; callers group by level.
func (r *careerSkillRepo) ListByMap(dbc dbctx.Context, mapID uuid.UUID) ([]*types.CareerSkill, error) {
	if mapID == uuid.Nil {
		return nil, fmt.Errorf("missing map_id")
	}
	var out []*types.CareerSkill
	if err := dbc.DB(r.db).
		Model(&types.CareerSkill{}).
		Where("map_id = ?", mapID).
		Order("position ASC").
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	career.SortSkills(out)
	return out, nil
}

func (r *careerSkillRepo) ListByLevel(dbc dbctx.Context, levelID uuid.UUID) ([]*types.CareerSkill, error) {
	if levelID == uuid.Nil {
		return nil, fmt.Errorf("missing level_id")
	}
	var out []*types.CareerSkill
	if err := dbc.DB(r.db).
		Model(&types.CareerSkill{}).
		Where("level_id = ?", levelID).
		Order("position ASC").
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	career.SortSkills(out)
	return out, nil
}

func (r *careerSkillRepo) MaxPosition(dbc dbctx.Context, levelID uuid.UUID) (int, error) {
	if levelID == uuid.Nil {
		return 0, fmt.Errorf("missing level_id")
	}
	var maxPos int
	if err := dbc.DB(r.db).
		Model(&types.CareerSkill{}).
		Select("COALESCE(MAX(position), -1)").
		Where("level_id = ?", levelID).
		Scan(&maxPos).Error; err != nil {
		return 0, err
	}
	return maxPos, nil
}

func (r *careerSkillRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	return dbc.DB(r.db).
		Where("id = ?", id).
		Delete(&types.CareerSkill{}).Error
}
