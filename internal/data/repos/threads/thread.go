package threads

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/domain/threads"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type SkillThreadRepo interface {
	Create(dbc dbctx.Context, rows []*types.SkillThread) ([]*types.SkillThread, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SkillThread, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.SkillThread, error)
	GetByStudentSkill(dbc dbctx.Context, studentID, skillID uuid.UUID) (*types.SkillThread, error)
	ListByStudentMap(dbc dbctx.Context, studentID, mapID uuid.UUID) ([]*types.SkillThread, error)
	// ListPending returns open threads, least recently active first. Empty mapIDs means every map.
	ListPending(dbc dbctx.Context, mapIDs []uuid.UUID, limit int) ([]*types.SkillThread, error)
	// ListPendingAfter continues ListPending past the given thread (keyset on last_message_at, id).
	ListPendingAfter(dbc dbctx.Context, mapIDs []uuid.UUID, after *types.SkillThread, limit int) ([]*types.SkillThread, error)
	ListPendingIdleSince(dbc dbctx.Context, cutoff time.Time, limit int) ([]*types.SkillThread, error)
	ListPendingBySkill(dbc dbctx.Context, skillID uuid.UUID) ([]*types.SkillThread, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type skillThreadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillThreadRepo(db *gorm.DB, log *logger.Logger) SkillThreadRepo {
	return &skillThreadRepo{db: db, log: log.With("repo", "SkillThreadRepo")}
}

func (r *skillThreadRepo) Create(dbc dbctx.Context, rows []*types.SkillThread) ([]*types.SkillThread, error) {
	if len(rows) == 0 {
		return []*types.SkillThread{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *skillThreadRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SkillThread, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	return take(dbc.DB(r.db).Where("id = ?", id))
}

func (r *skillThreadRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.SkillThread, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID required dbc.Tx")
	}
	return take(dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *skillThreadRepo) GetByStudentSkill(dbc dbctx.Context, studentID, skillID uuid.UUID) (*types.SkillThread, error) {
	if studentID == uuid.Nil || skillID == uuid.Nil {
		return nil, fmt.Errorf("missing student_id or skill_id")
	}
	q := dbc.DB(r.db)
	if dbc.Tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return take(q.Where("student_id = ? AND skill_id = ?", studentID, skillID))
}

func (r *skillThreadRepo) ListByStudentMap(dbc dbctx.Context, studentID, mapID uuid.UUID) ([]*types.SkillThread, error) {
	if studentID == uuid.Nil || mapID == uuid.Nil {
		return nil, fmt.Errorf("missing student_id or map_id")
	}
	var out []*types.SkillThread
	if err := dbc.DB(r.db).
		Model(&types.SkillThread{}).
		Where("student_id = ? AND map_id = ?", studentID, mapID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillThreadRepo) ListPending(dbc dbctx.Context, mapIDs []uuid.UUID, limit int) ([]*types.SkillThread, error) {
	return r.ListPendingAfter(dbc, mapIDs, nil, limit)
}

func (r *skillThreadRepo) ListPendingAfter(dbc dbctx.Context, mapIDs []uuid.UUID, after *types.SkillThread, limit int) ([]*types.SkillThread, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := dbc.DB(r.db).
		Model(&types.SkillThread{}).
		Where("status = ?", threads.StatusPending)
	if len(mapIDs) > 0 {
		q = q.Where("map_id IN ?", mapIDs)
	}
	if after != nil {
		at := after.LastMessageAt.UTC()
		q = q.Where("(last_message_at > ? OR (last_message_at = ? AND id > ?))", at, at, after.ID)
	}
	var out []*types.SkillThread
	if err := q.Order("last_message_at ASC").Order("id ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillThreadRepo) ListPendingIdleSince(dbc dbctx.Context, cutoff time.Time, limit int) ([]*types.SkillThread, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	var out []*types.SkillThread
	if err := dbc.DB(r.db).
		Model(&types.SkillThread{}).
		Where("status = ? AND last_message_at < ?", threads.StatusPending, cutoff.UTC()).
		Order("last_message_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillThreadRepo) ListPendingBySkill(dbc dbctx.Context, skillID uuid.UUID) ([]*types.SkillThread, error) {
	if skillID == uuid.Nil {
		return nil, fmt.Errorf("missing skill_id")
	}
	var out []*types.SkillThread
	if err := dbc.DB(r.db).
		Model(&types.SkillThread{}).
		Where("skill_id = ? AND status = ?", skillID, threads.StatusPending).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *skillThreadRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.SkillThread{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func take(q *gorm.DB) (*types.SkillThread, error) {
	var out types.SkillThread
	err := q.Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
