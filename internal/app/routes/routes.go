package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/greenleaf/internal/app/controllers"
	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/middleware"
	"github.com/yigit/greenleaf/internal/pkg/metrics"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Community *controllers.CommunityController
	Post      *controllers.PostController
	Reply     *controllers.ReplyController
	Analysis  *controllers.AnalysisController
	Upload    *controllers.UploadController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c *Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")

	api.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	// --- Public routes ---
	users := api.Group("/users")
	{
		users.POST("/register", c.Auth.Register)
		users.POST("/login", c.Auth.Login)
	}

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	profile := authenticated.Group("/users/profile")
	{
		profile.GET("", c.User.GetProfile)
		profile.PUT("", c.User.UpdateProfile)
		profile.DELETE("", c.User.DeleteAccount)
	}

	communities := authenticated.Group("/communities")
	{
		communities.GET("/:userId", c.Community.ListForUser)
		communities.GET("/community/:id", c.Community.GetDetail)
		communities.POST("/create", c.Community.Create)
		communities.PUT("/update/:id", c.Community.Update)
		communities.DELETE("/delete/:id", c.Community.Delete)
		communities.POST("/join/:id", c.Community.Join)
		communities.POST("/leave/:id", c.Community.Leave)
		communities.GET("/members/:id", c.Community.ListMembers)
		communities.DELETE("/community/:id/members/:memberId", c.Community.RemoveMember)
	}

	posts := authenticated.Group("/community-posts")
	{
		posts.POST("/create", c.Post.Create)
		posts.GET("/post/:id", c.Post.GetByID)
		posts.GET("/community/:id", c.Post.ListByCommunity)
		posts.GET("/:userId", c.Post.Feed)
		posts.DELETE("/delete/:id", c.Post.Delete)
		posts.POST("/like-unlike/:id", c.Post.ToggleLike)
	}

	replies := authenticated.Group("/community-replies")
	{
		replies.POST("/create", c.Reply.Create)
		replies.GET("/post/:postId", c.Reply.ListForPost)
		replies.GET("/reply/:id", c.Reply.GetByID)
		replies.POST("/like-unlike/:id", c.Reply.ToggleLike)
		replies.DELETE("/delete/:id", c.Reply.Delete)
	}

	authenticated.POST("/analyze-plant", c.Analysis.AnalyzePlant)
	authenticated.POST("/uploads/image", c.Upload.UploadImage)
}
