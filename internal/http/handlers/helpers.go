package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/careerladder-backend/internal/domain/identity"
	"github.com/yungbote/careerladder-backend/internal/http/response"
	"github.com/yungbote/careerladder-backend/internal/platform/ctxutil"
)

func requireActor(c *gin.Context) (identity.Actor, bool) {
	actor, ok := ctxutil.ActorFrom(c.Request.Context())
	if !ok || actor.ID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return identity.Actor{}, false
	}
	return actor, true
}

func paramID(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, code, err)
		return uuid.Nil, false
	}
	return id, true
}

// subjectQuery reads ?student_id=; absent means the actor.
func subjectQuery(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Query("student_id")
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func limitQuery(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > 200 {
		return 200
	}
	return n
}
