package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/app/services"
	"github.com/yigit/greenleaf/internal/middleware"
)

// PostController handles community posts
type PostController struct {
	postService services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Create publishes a post in a community
// POST /api/community-posts/create
func (c *PostController) Create(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	post, err := c.postService.CreatePost(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewMessageResponse("Post created successfully", post))
}

// GetByID returns a post with author and community resolved
// GET /api/community-posts/post/:id
func (c *PostController) GetByID(ctx *gin.Context) {
	post, err := c.postService.GetPost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// ListByCommunity returns a community's posts, newest first
// GET /api/community-posts/community/:id
func (c *PostController) ListByCommunity(ctx *gin.Context) {
	posts, err := c.postService.ListByCommunity(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts))
}

// Feed returns posts from every community :userId belongs to
// GET /api/community-posts/:userId
func (c *PostController) Feed(ctx *gin.Context) {
	feed, err := c.postService.ListFeed(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(feed.Message, feed.Posts))
}

// Delete removes a post
// DELETE /api/community-posts/delete/:id
func (c *PostController) Delete(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	postID := ctx.Param("id")
	if err := c.postService.DeletePost(ctx.Request.Context(), postID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Post deleted successfully", nil))
}

// ToggleLike likes or unlikes a post for the caller
// POST /api/community-posts/like-unlike/:id
func (c *PostController) ToggleLike(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	like, err := c.postService.ToggleLike(ctx.Request.Context(), ctx.Param("id"), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(like.Message, like))
}
