package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mleng/courtmate/internal/apperr"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error response and aborts the request.
func fail(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(statusFor(appErr.Kind), gin.H{
			"error": errorBody{Code: string(appErr.Kind), Message: appErr.Message},
		})
		return
	}

	slog.Error("unhandled error", "error", err, "path", c.FullPath())
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": errorBody{Code: "internal", Message: "internal error"},
	})
}

// failBadRequest reports a request binding problem.
func failBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": errorBody{Code: string(apperr.KindValidation), Message: message},
	})
}

// ok writes a success response with the given payload.
func ok(c *gin.Context, status int, payload any) {
	c.JSON(status, gin.H{"data": payload})
}
