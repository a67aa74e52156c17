package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/types"
)

// statusFor maps a service error onto an HTTP status code.
func statusFor(err error) int {
	var verr *service.ValidationError
	var aerr *service.AuthError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &aerr):
		if aerr.Conflict {
			return http.StatusConflict
		}
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Internal errors are logged
// and replaced by a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	resp := types.ErrorResponse{Error: err.Error()}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "validation failed"
		for _, f := range verr.Fields {
			resp.Fields = append(resp.Fields, types.FieldErrorPayload{Field: f.Field, Message: f.Message})
		}
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		resp.Error = "internal server error"
		if errors.Is(err, service.ErrPersistence) {
			resp.Error = "failed to save changes, please try again"
		}
	}
	if errors.Is(err, service.ErrNotFound) {
		resp.Error = "recipe not found"
	}

	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{Error: message})
}
