package http

import (
	"github.com/gin-gonic/gin"

	"docchat-relay/internal/bootstrap"
	"docchat-relay/internal/transport/http/handler"
	"docchat-relay/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	if app.Config.App.GinMode != "" {
		gin.SetMode(app.Config.App.GinMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(app.Logger.With("component", "http")),
		middleware.Metrics(app.Metrics),
	)

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	chatHandler := handler.NewChatHandler(app.ChatService, app.Logger.With("component", "chat"))
	uploadHandler := handler.NewUploadHandler(app.UploadService, app.Config.Webhook.UploadMaxBytes, app.Logger.With("component", "upload"))
	documentHandler := handler.NewDocumentHandler(app.DocumentService, app.Logger.With("component", "documents"))

	relay := router.Group("/")
	relay.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	relay.POST("/chat", chatHandler.Ask)
	relay.GET("/documents", documentHandler.List)
	relay.POST("/upload", uploadHandler.Upload)
	relay.GET("/upload", uploadHandler.Usage)

	return router
}
