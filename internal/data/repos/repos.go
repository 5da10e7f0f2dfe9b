package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/data/repos/career"
	"github.com/yungbote/careerladder-backend/internal/data/repos/progression"
	"github.com/yungbote/careerladder-backend/internal/data/repos/threads"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type CareerMapRepo = career.CareerMapRepo
type CareerLevelRepo = career.CareerLevelRepo
type CareerSkillRepo = career.CareerSkillRepo
type KPIDefinitionRepo = career.KPIDefinitionRepo
type MapFilter = career.MapFilter

type SurveySubmissionRepo = progression.SurveySubmissionRepo
type SurveySkillReviewRepo = progression.SurveySkillReviewRepo
type SurveyReviewEventRepo = progression.SurveyReviewEventRepo
type SkillAcquisitionRepo = progression.SkillAcquisitionRepo

type SkillThreadRepo = threads.SkillThreadRepo
type ThreadMessageRepo = threads.ThreadMessageRepo

func NewCareerMapRepo(db *gorm.DB, log *logger.Logger) CareerMapRepo {
	return career.NewCareerMapRepo(db, log)
}
func NewCareerLevelRepo(db *gorm.DB, log *logger.Logger) CareerLevelRepo {
	return career.NewCareerLevelRepo(db, log)
}
func NewCareerSkillRepo(db *gorm.DB, log *logger.Logger) CareerSkillRepo {
	return career.NewCareerSkillRepo(db, log)
}
func NewKPIDefinitionRepo(db *gorm.DB, log *logger.Logger) KPIDefinitionRepo {
	return career.NewKPIDefinitionRepo(db, log)
}

func NewSurveySubmissionRepo(db *gorm.DB, log *logger.Logger) SurveySubmissionRepo {
	return progression.NewSurveySubmissionRepo(db, log)
}
func NewSurveySkillReviewRepo(db *gorm.DB, log *logger.Logger) SurveySkillReviewRepo {
	return progression.NewSurveySkillReviewRepo(db, log)
}
func NewSurveyReviewEventRepo(db *gorm.DB, log *logger.Logger) SurveyReviewEventRepo {
	return progression.NewSurveyReviewEventRepo(db, log)
}
func NewSkillAcquisitionRepo(db *gorm.DB, log *logger.Logger) SkillAcquisitionRepo {
	return progression.NewSkillAcquisitionRepo(db, log)
}

func NewSkillThreadRepo(db *gorm.DB, log *logger.Logger) SkillThreadRepo {
	return threads.NewSkillThreadRepo(db, log)
}
func NewThreadMessageRepo(db *gorm.DB, log *logger.Logger) ThreadMessageRepo {
	return threads.NewThreadMessageRepo(db, log)
}
