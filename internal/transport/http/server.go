package http

import (
	"github.com/gin-gonic/gin"

	"articlesearch/internal/app"
	"articlesearch/internal/bootstrap"
	"articlesearch/internal/transport/http/handler"
	"articlesearch/internal/transport/http/middleware"
)

func NewRouter(a *bootstrap.App) *gin.Engine {
	gin.SetMode(a.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(a)
	router.GET("/healthz", healthHandler.Check)

	// API clients are concurrent, so sessions get collision-free names.
	chatService := a.Chat.WithSessionNaming(app.SessionNamingUUID)
	articleHandler := handler.NewArticleHandler(a.Articles)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")
	if a.Config.Auth.Enabled {
		v1.Use(middleware.AuthJWT(a.Config.Auth.JWTSecret))
	}

	v1.POST("/articles", articleHandler.Create)
	v1.POST("/articles/upload", articleHandler.UploadPDF)
	v1.GET("/articles", articleHandler.List)
	v1.GET("/articles/search", articleHandler.Search)

	v1.GET("/sessions", chatHandler.ListSessions)
	v1.POST("/sessions", chatHandler.CreateSession)
	v1.GET("/sessions/:id/memory", chatHandler.GetHistory)
	v1.POST("/ask", chatHandler.Ask)

	return router
}
