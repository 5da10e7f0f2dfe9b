package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/careerladder-backend/internal/http/response"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
	"github.com/yungbote/careerladder-backend/internal/services"
)

type ProgressionHandler struct {
	log         *logger.Logger
	progression services.ProgressionService
}

func NewProgressionHandler(log *logger.Logger, progression services.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{log: log.With("handler", "ProgressionHandler"), progression: progression}
}

// GET /api/maps/:id/progress?student_id=
func (h *ProgressionHandler) MapState(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	mapID, ok := paramID(c, "id", "invalid_map_id")
	if !ok {
		return
	}
	subjectID, ok := subjectQuery(c)
	if !ok {
		return
	}
	state, err := h.progression.MapState(c.Request.Context(), actor, subjectID, mapID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, state)
}

// GET /api/levels/:id/progress?student_id=
func (h *ProgressionHandler) LevelState(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	levelID, ok := paramID(c, "id", "invalid_level_id")
	if !ok {
		return
	}
	subjectID, ok := subjectQuery(c)
	if !ok {
		return
	}
	state, err := h.progression.LevelState(c.Request.Context(), actor, subjectID, levelID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, state)
}
