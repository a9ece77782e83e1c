package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vidmarket/domain/repository"
	httpHandler "vidmarket/interfaces/http"
	"vidmarket/interfaces/middleware"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	videoAccessHandler httpHandler.IVideoAccessHandler,
	purchaseHandler httpHandler.IPurchaseHandler,
	videoAdminHandler httpHandler.IVideoAdminHandler,
	webhookHandler httpHandler.IWebhookHandler,
	userRepository repository.IUser,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "https://localhost:4200"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Range", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "Accept-Ranges"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)

	// Provider callbacks authenticate by signature, not bearer token.
	router.POST("/webhooks/payment", webhookHandler.HandleStripe)

	// Preview is public. Stream validation, streaming and download
	// redemption authenticate by possession of the short-lived tokens
	// issued under /api.
	router.GET("/videos/validate-stream", videoAccessHandler.ValidateStream)
	router.GET("/videos/:videoId/preview", videoAccessHandler.Preview)
	router.GET("/videos/:videoId/stream", videoAccessHandler.Stream)
	router.GET("/downloads/:downloadId", videoAccessHandler.Download)

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))

	videos := api.Group("/videos")
	{
		videos.POST("", videoAdminHandler.Upload)
		videos.POST("/:videoId/complete", videoAdminHandler.CompleteProcessing)
		videos.DELETE("/:videoId", videoAdminHandler.Delete)

		videos.POST("/:videoId/purchase", purchaseHandler.Purchase)
		videos.GET("/:videoId/stream-token", videoAccessHandler.StreamToken)
		videos.GET("/:videoId/download-token", videoAccessHandler.DownloadToken)
	}

	return router
}
