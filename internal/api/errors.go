package api

import (
	stderrors "errors"
	"net/http"

	"keystats/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps application error codes to HTTP statuses
func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidRange, errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeUnauthorized:
		return http.StatusUnauthorized
	case errors.CodeConflict:
		return http.StatusConflict
	case errors.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"detail", "code"}; server errors hide the cause
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)

	detail := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		detail = appErr.Message
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		detail = "internal server error"
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail, "code": code})
}
