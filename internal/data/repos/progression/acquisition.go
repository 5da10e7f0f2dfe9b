package progression

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"github.com/yungbote/careerladder-backend/internal/platform/dbctx"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type SkillAcquisitionRepo interface {
	// Upsert keeps the first acquisition; acquisitions are never revoked.
	Upsert(dbc dbctx.Context, row *types.SkillAcquisition) error
	ListByStudentSkills(dbc dbctx.Context, studentID uuid.UUID, skillIDs []uuid.UUID) ([]*types.SkillAcquisition, error)
}

type skillAcquisitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillAcquisitionRepo(db *gorm.DB, log *logger.Logger) SkillAcquisitionRepo {
	return &skillAcquisitionRepo{db: db, log: log.With("repo", "SkillAcquisitionRepo")}
}

func (r *skillAcquisitionRepo) Upsert(dbc dbctx.Context, row *types.SkillAcquisition) error {
	if row == nil || row.StudentID == uuid.Nil || row.SkillID == uuid.Nil {
		return fmt.Errorf("missing student_id or skill_id")
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "skill_id"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *skillAcquisitionRepo) ListByStudentSkills(dbc dbctx.Context, studentID uuid.UUID, skillIDs []uuid.UUID) ([]*types.SkillAcquisition, error) {
	if studentID == uuid.Nil {
		return nil, fmt.Errorf("missing student_id")
	}
	if len(skillIDs) == 0 {
		return []*types.SkillAcquisition{}, nil
	}
	var out []*types.SkillAcquisition
	if err := dbc.DB(r.db).
		Model(&types.SkillAcquisition{}).
		Where("student_id = ? AND skill_id IN ?", studentID, skillIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
