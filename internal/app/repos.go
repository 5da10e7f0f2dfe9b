package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/careerladder-backend/internal/data/repos"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
)

type Repos struct {
	CareerMap     repos.CareerMapRepo
	CareerLevel   repos.CareerLevelRepo
	CareerSkill   repos.CareerSkillRepo
	KPIDefinition repos.KPIDefinitionRepo

	SurveySubmission  repos.SurveySubmissionRepo
	SurveySkillReview repos.SurveySkillReviewRepo
	SurveyReviewEvent repos.SurveyReviewEventRepo
	SkillAcquisition  repos.SkillAcquisitionRepo

	SkillThread   repos.SkillThreadRepo
	ThreadMessage repos.ThreadMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		CareerMap:     repos.NewCareerMapRepo(db, log),
		CareerLevel:   repos.NewCareerLevelRepo(db, log),
		CareerSkill:   repos.NewCareerSkillRepo(db, log),
		KPIDefinition: repos.NewKPIDefinitionRepo(db, log),

		SurveySubmission:  repos.NewSurveySubmissionRepo(db, log),
		SurveySkillReview: repos.NewSurveySkillReviewRepo(db, log),
		SurveyReviewEvent: repos.NewSurveyReviewEventRepo(db, log),
		SkillAcquisition:  repos.NewSkillAcquisitionRepo(db, log),

		SkillThread:   repos.NewSkillThreadRepo(db, log),
		ThreadMessage: repos.NewThreadMessageRepo(db, log),
	}
}
