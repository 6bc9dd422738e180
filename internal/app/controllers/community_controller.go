package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/app/services"
	"github.com/yigit/greenleaf/internal/middleware"
)

// CommunityController handles community and membership operations
type CommunityController struct {
	communityService services.CommunityService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService) *CommunityController {
	return &CommunityController{communityService: communityService}
}

// ListForUser splits all communities by whether :userId is a member
// GET /api/communities/:userId
func (c *CommunityController) ListForUser(ctx *gin.Context) {
	list, err := c.communityService.ListForUser(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// GetDetail returns a community with its admin and posts resolved
// GET /api/communities/community/:id
func (c *CommunityController) GetDetail(ctx *gin.Context) {
	detail, err := c.communityService.GetCommunityDetail(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// Create creates a community administered by the caller
// POST /api/communities/create
func (c *CommunityController) Create(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req dto.CreateCommunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	community, err := c.communityService.CreateCommunity(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Community created successfully", community))
}

// Update changes name, description or image. Admin only.
// PUT /api/communities/update/:id
func (c *CommunityController) Update(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateCommunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	community, err := c.communityService.UpdateCommunity(ctx.Request.Context(), ctx.Param("id"), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Community updated successfully", community))
}

// Delete removes a community
// DELETE /api/communities/delete/:id
func (c *CommunityController) Delete(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	communityID := ctx.Param("id")
	if err := c.communityService.DeleteCommunity(ctx.Request.Context(), communityID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Community deleted successfully", nil))
}

// Join adds the caller to the community
// POST /api/communities/join/:id
func (c *CommunityController) Join(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	if err := c.communityService.JoinCommunity(ctx.Request.Context(), ctx.Param("id"), userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Joined community successfully", nil))
}

// Leave removes the caller from the community
// POST /api/communities/leave/:id
func (c *CommunityController) Leave(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	if err := c.communityService.LeaveCommunity(ctx.Request.Context(), ctx.Param("id"), userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Left community successfully", nil))
}

// ListMembers returns every member except the admin
// GET /api/communities/members/:id
func (c *CommunityController) ListMembers(ctx *gin.Context) {
	members, err := c.communityService.ListMembers(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(members))
}

// RemoveMember removes :memberId from the community. Admin only.
// DELETE /api/communities/community/:id/members/:memberId
func (c *CommunityController) RemoveMember(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	communityID, memberID := ctx.Param("id"), ctx.Param("memberId")
	if err := c.communityService.RemoveMember(ctx.Request.Context(), communityID, userID, memberID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Member removed successfully", nil))
}
