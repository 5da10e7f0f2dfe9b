package domain

import (
	"github.com/yungbote/careerladder-backend/internal/domain/career"
	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/domain/threads"
)

type Actor = identity.Actor
type Role = identity.Role

type CareerMap = career.CareerMap
type CareerLevel = career.CareerLevel
type CareerSkill = career.CareerSkill
type KPIDefinition = career.KPIDefinition
type KPITarget = career.KPITarget

type SurveySubmission = progression.SurveySubmission
type SurveySkillReview = progression.SurveySkillReview
type SurveyReviewEvent = progression.SurveyReviewEvent
type SkillAcquisition = progression.SkillAcquisition

type SkillThread = threads.SkillThread
type ThreadMessage = threads.ThreadMessage
