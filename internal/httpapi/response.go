package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neumathe/kousuan/engine"
	"github.com/neumathe/kousuan/internal/worksheet"
)

const (
	codeInvalidRequest = "invalid_request"
	codeNotFound       = "not_found"
	codeUnsatisfiable  = "unsatisfiable"
	codeInternal       = "internal"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: message, Code: code}})
}

// respondErr 按错误类型映射状态码，错误信息原样返回
func respondErr(c *gin.Context, err error) {
	status, code := statusFor(err)
	respondError(c, status, code, err.Error())
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, engine.ErrCategoryNotFound), errors.Is(err, worksheet.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, engine.ErrInvalidAllocationRequest),
		errors.Is(err, engine.ErrInvalidCount),
		errors.Is(err, worksheet.ErrInvalidRequest):
		return http.StatusBadRequest, codeInvalidRequest
	case errors.Is(err, engine.ErrConstraintUnsatisfiable):
		return http.StatusUnprocessableEntity, codeUnsatisfiable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
