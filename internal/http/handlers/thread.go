package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/careerladder-backend/internal/http/response"
	"github.com/yungbote/careerladder-backend/internal/platform/logger"
	"github.com/yungbote/careerladder-backend/internal/services"
)

type ThreadHandler struct {
	log     *logger.Logger
	threads services.ThreadService
}

func NewThreadHandler(log *logger.Logger, threads services.ThreadService) *ThreadHandler {
	return &ThreadHandler{log: log.With("handler", "ThreadHandler"), threads: threads}
}

// GET /api/skills/:id/thread?student_id=
func (h *ThreadHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	skillID, ok := paramID(c, "id", "invalid_skill_id")
	if !ok {
		return
	}
	studentID, ok := subjectQuery(c)
	if !ok {
		return
	}
	view, err := h.threads.Get(c.Request.Context(), actor, skillID, studentID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/skills/:id/thread
// body: { "body": "..." }
func (h *ThreadHandler) Request(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	skillID, ok := paramID(c, "id", "invalid_skill_id")
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.threads.Request(c.Request.Context(), actor, skillID, req.Body)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/threads/:id/messages
func (h *ThreadHandler) Message(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	threadID, ok := paramID(c, "id", "invalid_thread_id")
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.threads.Message(c.Request.Context(), actor, threadID, req.Body)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/threads/:id/review
// body: { "action": "approve" | "reject", "body": "..." }
func (h *ThreadHandler) Review(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	threadID, ok := paramID(c, "id", "invalid_thread_id")
	if !ok {
		return
	}
	var req struct {
		Action string `json:"action"`
		Body   string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.threads.Review(c.Request.Context(), actor, threadID, req.Action, req.Body)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/threads/awaiting-review
func (h *ThreadHandler) AwaitingReview(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	views, err := h.threads.AwaitingReview(c.Request.Context(), actor, limitQuery(c, 50))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"threads": views})
}
