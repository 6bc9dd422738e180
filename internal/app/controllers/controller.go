// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/middleware"
)

// callerID returns the authenticated user id or writes a 401.
// Routes behind JWTAuth always have one; this guards misrouted handlers.
func callerID(ctx *gin.Context) (string, bool) {
	id, ok := middleware.CurrentUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
	}
	return id, ok
}
