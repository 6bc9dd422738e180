package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
	"github.com/yigit/greenleaf/internal/pkg/logger"
)

type errorMapping struct {
	target   error
	status   int
	code     dto.ErrorCode
	fallback string
}

// errorMappings is checked in order; the first category err matches wins.
// Duplicates and membership conflicts are client errors, not 409s.
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, "Invalid request"},
	{apperrors.ErrResourceAlreadyExists, http.StatusBadRequest, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusBadRequest, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrExternalService, http.StatusInternalServerError, dto.ErrorCodeExternalServiceError, "External service failure"},
}

// debugEnabled reports whether error internals may be echoed to the client
func debugEnabled() bool {
	return gin.Mode() != gin.ReleaseMode
}

// HandleAPIError writes the error response for err. Known categories keep
// their message; anything else is a 500 with a generic message.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	isCustom := errors.As(err, &custom)

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.fallback
		if isCustom && custom.Message != "" {
			message = custom.Message
		}
		detail := dto.NewErrorDetail(m.code, message)
		if isCustom && custom.Details != nil {
			if field, ok := custom.Details["field"].(string); ok {
				detail.WithField(field)
			}
			if m.status < http.StatusInternalServerError || debugEnabled() {
				detail.WithDetails(custom.Details)
			}
		}
		if m.status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.FullPath()).Msg("Downstream failure")
			if debugEnabled() {
				detail.WithDebugInfo("%v", err)
			}
		}
		c.JSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
	detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").WithSeverity(dto.ErrorSeverityCritical)
	if debugEnabled() {
		detail.WithDebugInfo("%v", err)
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
}
