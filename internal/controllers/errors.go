package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"sigo-api/internal/apperrors"
	"sigo-api/internal/middleware"
	"sigo-api/internal/models"
)

// statusClientClosedRequest is the nginx convention for a client that hung up
const statusClientClosedRequest = 499

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

// fieldName reports validation failures under the name clients send
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// respondError maps a service error to its status code and error body.
// Unknown errors are logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		abort(c, http.StatusBadRequest, "Validation failed", "validation_error", ve.Fields)
	case errors.Is(err, apperrors.ErrNotFound):
		abort(c, http.StatusNotFound, "Resource not found", "not_found", nil)
	case errors.Is(err, apperrors.ErrConflict):
		abort(c, http.StatusConflict, "Resource already exists", "conflict", nil)
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		abort(c, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error(), "invalid_credentials", nil)
	case errors.Is(err, apperrors.ErrInvalidToken):
		abort(c, http.StatusUnauthorized, apperrors.ErrInvalidToken.Error(), "invalid_token", nil)
	case errors.Is(err, apperrors.ErrPowerBINotConfigured):
		abort(c, http.StatusServiceUnavailable, "Power BI integration is not configured", "powerbi_not_configured", nil)
	case errors.Is(err, apperrors.ErrUpstream):
		middleware.Logger(c).Warn("Power BI request failed", zap.Error(err))
		abort(c, http.StatusBadGateway, "Power BI request failed", "upstream_error", nil)
	case errors.Is(err, context.DeadlineExceeded):
		middleware.Logger(c).Warn("Request deadline exceeded", zap.Error(err))
		abort(c, http.StatusGatewayTimeout, "Request timed out", "timeout", nil)
	case errors.Is(err, context.Canceled):
		middleware.Logger(c).Info("Client closed request", zap.Error(err))
		c.AbortWithStatus(statusClientClosedRequest)
	default:
		middleware.Logger(c).Error("Request failed", zap.Error(err))
		abort(c, http.StatusInternalServerError, "Internal server error", "internal_error", nil)
	}
}

// respondBindError answers a request whose body or query failed binding
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		abort(c, http.StatusBadRequest, "Validation failed", "validation_error", fields)
		return
	}
	abort(c, http.StatusBadRequest, "Invalid request body", "validation_error",
		map[string]string{"body": "must be valid JSON of the expected shape"})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a UUID"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

func abort(c *gin.Context, status int, message, code string, details map[string]string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
