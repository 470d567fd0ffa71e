package router

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"ideaboard/internal/handlers"
	"ideaboard/internal/middleware"
	"ideaboard/internal/models"
)

// Register wires every route. Privileged groups pass through the role
// middleware; the voter identity for the public vote route is resolved
// inside the handler from session or client address.
func Register(
	r *gin.Engine,
	ideaHandler *handlers.IdeaHandler,
	adminHandler *handlers.AdminHandler,
	authHandler *handlers.AuthHandler,
	newsHandler *handlers.NewsHandler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "OK",
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"go_version": runtime.Version(),
		})
	})

	api := r.Group("/api")

	// Public board routes.
	api.GET("/ideas", ideaHandler.List)
	api.POST("/ideas", ideaHandler.Create)
	api.POST("/ideas/:id/vote", ideaHandler.Vote)
	api.GET("/ideas/:id/comments", ideaHandler.Comments)
	api.POST("/ideas/:id/comments", ideaHandler.CreateComment)
	api.GET("/news", newsHandler.News)

	// Accounts.
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/verify", authHandler.Verify)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authHandler.Me)
	}

	// Moderation: moderator, content_manager and admin.
	moderation := api.Group("", middleware.RequireRole(
		models.RoleModerator, models.RoleContentManager, models.RoleAdmin,
	))
	{
		moderation.DELETE("/ideas/:id", adminHandler.DeleteIdea)
		moderation.PUT("/ideas/:id/moderate", adminHandler.Moderate)
		moderation.DELETE("/comments/:id", adminHandler.DeleteComment)
		moderation.GET("/moderation/ideas", adminHandler.PendingIdeas)
	}

	// Administration.
	admin := api.Group("", middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.POST("/admin/invitations", adminHandler.CreateInvitation)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
	})
}
