package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/careerladder-backend/internal/domain/aggregates"
)

type APIError struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// StatusFor maps an aggregate error code onto an HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusUnprocessableEntity
	case domainagg.CodeForbidden:
		return http.StatusForbidden
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict, domainagg.CodePreconditionFailed:
		return http.StatusConflict
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// RespondDomainError writes the envelope for err. The reason, when present, is
// the machine code; otherwise the aggregate code is used.
func RespondDomainError(c *gin.Context, err error) {
	aggErr, ok := domainagg.As(err)
	if !ok {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorEnvelope{Error: APIError{Message: "internal error", Code: string(domainagg.CodeInternal)}})
		return
	}
	status := StatusFor(aggErr.Code)
	code := aggErr.Reason
	if code == "" {
		code = string(aggErr.Code)
	}
	msg := aggErr.Message
	if status >= http.StatusInternalServerError {
		c.Error(err)
		if aggErr.Code != domainagg.CodeRetryable {
			msg = "internal error"
		}
	}
	if msg == "" {
		msg = string(aggErr.Code)
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code, Fields: aggErr.Fields}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
