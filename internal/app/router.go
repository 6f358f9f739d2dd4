package app

import (
	"toast_backend/docs"
	"toast_backend/internal/config"
	"toast_backend/internal/middleware"
	"toast_backend/internal/model"
	"toast_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Auth middleware reads the JWT secret from the request context.
	router.Use(func(ctx *gin.Context) {
		ctx.Set("config", cfg)
		ctx.Next()
	})

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
	router.GET("/health", c.health.HealthCheck)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(), middleware.ActivityMiddleware(repos.user))
	{
		// Profile
		authGroup.GET("/me", c.user.Me)
		authGroup.PUT("/me", c.user.UpdateMe)
		authGroup.POST("/me/avatar", c.user.UploadAvatar)
		authGroup.GET("/users/search", c.user.Search)

		// Daily reflections
		authGroup.POST("/notes", c.note.Create)
		authGroup.POST("/notes/audio", c.note.CreateAudio)
		authGroup.GET("/notes", c.note.List)
		authGroup.GET("/notes/week", c.note.Week)
		authGroup.GET("/notes/:id", c.note.Get)
		authGroup.PUT("/notes/:id", c.note.Update)
		authGroup.DELETE("/notes/:id", c.note.Delete)

		// Weekly toasts
		authGroup.POST("/toasts/generate", c.toast.Generate)
		authGroup.POST("/toasts/regenerate", c.toast.Regenerate)
		authGroup.GET("/toasts", c.toast.List)
		authGroup.GET("/toasts/:id", c.toast.Get)

		// Sharing, reactions, comments
		authGroup.POST("/toasts/:id/share", c.share.Share)
		authGroup.GET("/shares/inbox", c.share.SharedWithMe)
		authGroup.POST("/toasts/:id/reactions", c.share.React)
		authGroup.DELETE("/toasts/:id/reactions", c.share.Unreact)
		authGroup.GET("/toasts/:id/reactions", c.share.Reactions)
		authGroup.POST("/toasts/:id/comments", c.share.Comment)
		authGroup.GET("/toasts/:id/comments", c.share.Comments)

		// Badges
		authGroup.GET("/badges", c.badge.Catalog)
		authGroup.GET("/badges/mine", c.badge.Mine)
		authGroup.POST("/badges/mine/:id/seen", c.badge.MarkSeen)
		authGroup.POST("/badges/evaluate", c.badge.Reevaluate)

		// Friends
		authGroup.GET("/friends", c.friendship.Friends)
		authGroup.POST("/friends/requests", c.friendship.SendRequest)
		authGroup.GET("/friends/requests", c.friendship.Pending)
		authGroup.PUT("/friends/requests/:id", c.friendship.Respond)

		// Notifications
		authGroup.GET("/notifications", c.notification.List)
		authGroup.POST("/notifications/:id/read", c.notification.MarkRead)
		authGroup.POST("/notifications/read-all", c.notification.MarkAllRead)
		authGroup.GET("/ws", c.notification.Socket)
	}

	a.registerAdminRoutes(router, c)
}

// registerAdminRoutes exposes badge catalog management to admins.
func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/badges", c.badge.AdminList)
		admin.POST("/badges", c.badge.AdminCreate)
		admin.PUT("/badges/:id", c.badge.AdminUpdate)
		admin.DELETE("/badges/:id", c.badge.AdminDelete)
	}
}
