package db

import (
	"fmt"

	types "github.com/yungbote/careerladder-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Catalog
		// =========================
		&types.CareerMap{},
		&types.CareerLevel{},
		&types.CareerSkill{},
		&types.KPIDefinition{},

		// =========================
		// Surveys + reviews
		// =========================
		&types.SurveySubmission{},
		&types.SurveySkillReview{},
		&types.SurveyReviewEvent{},

		// =========================
		// Skill threads
		// =========================
		&types.SkillThread{},
		&types.ThreadMessage{},
		&types.SkillAcquisition{},
	)
}

// EnsureProgressionIndexes creates the partial indexes gorm tags cannot express.
// The statements are valid on both postgres and sqlite.
func EnsureProgressionIndexes(db *gorm.DB) error {
	// At most one pending submission per subject+scope.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_survey_submission_one_pending
		ON survey_submission (subject_id, scope_type, scope_id)
		WHERE status = 'pending';
	`).Error; err != nil {
		return fmt.Errorf("create idx_survey_submission_one_pending: %w", err)
	}

	// Rounds are unique per subject+scope.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_survey_submission_round
		ON survey_submission (subject_id, scope_type, scope_id, round);
	`).Error; err != nil {
		return fmt.Errorf("create idx_survey_submission_round: %w", err)
	}

	// Reviewer queues.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_skill_thread_status_last
		ON skill_thread (status, last_message_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_skill_thread_status_last: %w", err)
	}

	return nil
}

func MigrateAll(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return err
	}
	return EnsureProgressionIndexes(db)
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...", "driver", s.driver)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureProgressionIndexes(s.db); err != nil {
		s.log.Error("Progression index migration failed", "error", err)
		return err
	}
	return nil
}
