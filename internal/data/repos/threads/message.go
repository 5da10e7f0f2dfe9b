package threads

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

// ThreadMessageRepo is append-only; ordering is by per-thread seq.
type ThreadMessageRepo interface {
	Create(dbc dbctx.Context, rows []*types.ThreadMessage) ([]*types.ThreadMessage, error)
	GetMaxSeq(dbc dbctx.Context, threadID uuid.UUID) (int64, error)
	ListByThread(dbc dbctx.Context, threadID uuid.UUID) ([]*types.ThreadMessage, error)
	ListByThreads(dbc dbctx.Context, threadIDs []uuid.UUID) (map[uuid.UUID][]*types.ThreadMessage, error)
}

type threadMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThreadMessageRepo(db *gorm.DB, log *logger.Logger) ThreadMessageRepo {
	return &threadMessageRepo{db: db, log: log.With("repo", "ThreadMessageRepo")}
}

func (r *threadMessageRepo) Create(dbc dbctx.Context, rows []*types.ThreadMessage) ([]*types.ThreadMessage, error) {
	if len(rows) == 0 {
		return []*types.ThreadMessage{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *threadMessageRepo) GetMaxSeq(dbc dbctx.Context, threadID uuid.UUID) (int64, error) {
	if threadID == uuid.Nil {
		return 0, fmt.Errorf("missing thread_id")
	}
	var maxSeq int64
	if err := dbc.DB(r.db).
		Model(&types.ThreadMessage{}).
		Select("COALESCE(MAX(seq), 0)").
		Where("thread_id = ?", threadID).
		Scan(&maxSeq).Error; err != nil {
		return 0, err
	}
	return maxSeq, nil
}

func (r *threadMessageRepo) ListByThread(dbc dbctx.Context, threadID uuid.UUID) ([]*types.ThreadMessage, error) {
	if threadID == uuid.Nil {
		return nil, fmt.Errorf("missing thread_id")
	}
	var out []*types.ThreadMessage
	if err := dbc.DB(r.db).
		Model(&types.ThreadMessage{}).
		Where("thread_id = ?", threadID).
		Order("seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *threadMessageRepo) ListByThreads(dbc dbctx.Context, threadIDs []uuid.UUID) (map[uuid.UUID][]*types.ThreadMessage, error) {
	out := map[uuid.UUID][]*types.ThreadMessage{}
	if len(threadIDs) == 0 {
		return out, nil
	}
	var rows []*types.ThreadMessage
	if err := dbc.DB(r.db).
		Model(&types.ThreadMessage{}).
		Where("thread_id IN ?", threadIDs).
		Order("thread_id ASC").
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ThreadID] = append(out[row.ThreadID], row)
	}
	return out, nil
}
