package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/app/services"
	"github.com/yigit/greenleaf/internal/middleware"
)

// ReplyController handles threaded replies
type ReplyController struct {
	replyService services.ReplyService
}

// NewReplyController creates a new ReplyController
func NewReplyController(replyService services.ReplyService) *ReplyController {
	return &ReplyController{replyService: replyService}
}

// Create replies to a post, or to another reply when parentReplyId is set
// POST /api/community-replies/create
func (c *ReplyController) Create(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req dto.CreateReplyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	reply, err := c.replyService.CreateReply(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Reply created successfully", reply))
}

// ListForPost returns the hydrated reply tree of a post
// GET /api/community-replies/post/:postId
func (c *ReplyController) ListForPost(ctx *gin.Context) {
	tree, err := c.replyService.ListRepliesForPost(ctx.Request.Context(), ctx.Param("postId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tree))
}

// GetByID returns a single reply
// GET /api/community-replies/reply/:id
func (c *ReplyController) GetByID(ctx *gin.Context) {
	reply, err := c.replyService.GetReply(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(reply))
}

// ToggleLike likes or unlikes a reply for the caller
// POST /api/community-replies/like-unlike/:id
func (c *ReplyController) ToggleLike(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	like, err := c.replyService.ToggleLike(ctx.Request.Context(), ctx.Param("id"), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(like.Message, like))
}

// Delete removes a reply. Its own replies stay in storage but drop out of the tree.
// DELETE /api/community-replies/delete/:id
func (c *ReplyController) Delete(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	replyID := ctx.Param("id")
	if err := c.replyService.DeleteReply(ctx.Request.Context(), replyID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Reply deleted successfully", nil))
}
