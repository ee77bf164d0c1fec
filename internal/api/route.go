package api

import (
	"Ripple/internal/api/middleware"
	"Ripple/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"Code":    200,
			"Message": "ok",
			"Data":    nil,
		})
	})

	apiGroup := r.Group("/api")
	{
		// 实时通道自带令牌鉴权
		apiGroup.GET("/ws", group.WsHandler.Connect)

		authAPI := apiGroup.Group("/auth")
		{
			authAPI.POST("/register", group.UserHandler.Register)
			authAPI.POST("/login", group.UserHandler.Login)

			authGroup := authAPI.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
			}
		}

		userGroup := apiGroup.Group("/user")
		{
			authOptGroup := userGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("/search", group.UserHandler.SearchUsers)
				authOptGroup.GET("/:username", group.UserHandler.GetProfile)
			}

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.PUT("/profile", group.UserHandler.UpdateProfile)
				authGroup.PUT("/avatar", group.UserHandler.UploadAvatar)
				authGroup.DELETE("/avatar", group.UserHandler.DeleteAvatar)
			}
		}

		postGroup := apiGroup.Group("/posts")
		{
			authOptGroup := postGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("", group.PostHandler.GetFeed)
				authOptGroup.GET("/:post_id", group.PostHandler.GetPost)
				authOptGroup.GET("/list/:user_id", group.PostHandler.GetUserPosts)
				authOptGroup.GET("/:post_id/comments", group.PostActionHandler.GetComments)
			}

			authGroup := postGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.PostHandler.CreatePost)
				authGroup.DELETE("/:post_id", group.PostHandler.DeletePost)
				authGroup.POST("/:post_id/like", group.PostActionHandler.ToggleLike)
				authGroup.POST("/:post_id/comments", group.PostActionHandler.CreateComment)
				authGroup.DELETE("/comments/:comment_id", group.PostActionHandler.DeleteComment)
			}
		}

		followGroup := apiGroup.Group("/follow")
		followGroup.Use(middleware.AuthMiddleware())
		{
			followGroup.POST("/:user_id", group.UserFollowHandler.ToggleFollow)
			followGroup.GET("/:user_id/followers", group.UserFollowHandler.GetFollowers)
			followGroup.GET("/:user_id/following", group.UserFollowHandler.GetFollowing)
		}

		messageGroup := apiGroup.Group("/messages")
		messageGroup.Use(middleware.AuthMiddleware())
		{
			messageGroup.POST("", group.MessageHandler.SendMessage)
			messageGroup.GET("/conversations", group.MessageHandler.ListConversations)
			messageGroup.GET("/conversations/:conversation_id", group.MessageHandler.GetHistory)
		}

		notificationGroup := apiGroup.Group("/notifications")
		notificationGroup.Use(middleware.AuthMiddleware())
		{
			notificationGroup.GET("", group.NotificationHandler.GetNotifications)
			notificationGroup.PUT("/mark-as-read", group.NotificationHandler.MarkAllRead)
		}
	}

	return r
}
