package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/careerladder-backend/internal/domain/progression"
	"github.com/yungbote/careerladder-backend/internal/http/response"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
	"github.com/yungbote/careerladder-backend/internal/services"
)

type SurveyHandler struct {
	log     *logger.Logger
	surveys services.SurveyService
	reviews services.ReviewService
}

func NewSurveyHandler(log *logger.Logger, surveys services.SurveyService, reviews services.ReviewService) *SurveyHandler {
	return &SurveyHandler{log: log.With("handler", "SurveyHandler"), surveys: surveys, reviews: reviews}
}

func scopeParam(c *gin.Context, t progression.ScopeType) (progression.Scope, bool) {
	id, ok := paramID(c, "id", "invalid_"+string(t)+"_id")
	if !ok {
		return progression.Scope{}, false
	}
	return progression.Scope{Type: t, ID: id}, true
}

// Template serves GET /api/maps/:id/survey and GET /api/levels/:id/survey.
func (h *SurveyHandler) Template(t progression.ScopeType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		scope, ok := scopeParam(c, t)
		if !ok {
			return
		}
		tpl, err := h.surveys.Template(c.Request.Context(), actor, scope)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"template": tpl})
	}
}

// Submit serves POST /api/maps/:id/survey and POST /api/levels/:id/survey.
// body: { "answers": { "<skill_id>": "mastered" | "very_confident" | ... } }
func (h *SurveyHandler) Submit(t progression.ScopeType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		scope, ok := scopeParam(c, t)
		if !ok {
			return
		}
		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		view, err := h.surveys.Submit(c.Request.Context(), actor, scope, req.Answers)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		response.RespondCreated(c, gin.H{"submission": view})
	}
}

// Latest serves GET /api/{maps,levels}/:id/survey/latest?student_id=.
func (h *SurveyHandler) Latest(t progression.ScopeType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		scope, ok := scopeParam(c, t)
		if !ok {
			return
		}
		subjectID, ok := subjectQuery(c)
		if !ok {
			return
		}
		view, err := h.surveys.Latest(c.Request.Context(), actor, subjectID, scope)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"submission": view})
	}
}

// GET /api/surveys/:id
func (h *SurveyHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "invalid_submission_id")
	if !ok {
		return
	}
	view, err := h.surveys.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submission": view})
}

// GET /api/surveys/pending
func (h *SurveyHandler) Pending(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	subs, err := h.reviews.Pending(c.Request.Context(), actor, limitQuery(c, 50))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submissions": subs})
}

// POST /api/surveys/:id/skills/:skill_id/review
// body: { "action": "approve" | "reject", "comment": "..." }
func (h *SurveyHandler) Review(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "invalid_submission_id")
	if !ok {
		return
	}
	skillID, ok := paramID(c, "skill_id", "invalid_skill_id")
	if !ok {
		return
	}
	var req struct {
		Action  string `json:"action"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.reviews.Decide(c.Request.Context(), actor, id, skillID, req.Action, req.Comment)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submission": view})
}
