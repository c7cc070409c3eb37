package http

import (
	"github.com/gin-gonic/gin"

	"fundlens/internal/bootstrap"
	"fundlens/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	documentHandler := handler.NewDocumentHandler(app.IngestService, app.DocumentService)
	fundHandler := handler.NewFundHandler(app.FundService, app.MetricsService)
	searchHandler := handler.NewSearchHandler(app.SearchIndex, app.Config.Search.TopK)
	queryHandler := handler.NewQueryHandler(app.QueryService)
	conversationHandler := handler.NewConversationHandler(app.ConversationService)

	v1 := router.Group("/api/v1")

	v1.POST("/documents", documentHandler.Intake)
	v1.POST("/documents/upload", documentHandler.Upload)
	v1.GET("/documents", documentHandler.List)
	v1.GET("/documents/:id", documentHandler.Get)

	v1.GET("/funds", fundHandler.List)
	v1.GET("/funds/compare", fundHandler.Compare)
	v1.GET("/funds/:id", fundHandler.Get)
	v1.PATCH("/funds/:id", fundHandler.Update)
	v1.GET("/funds/:id/metrics", fundHandler.Metrics)
	v1.GET("/funds/:id/transactions", fundHandler.Transactions)
	v1.GET("/funds/:id/historical_data", fundHandler.Historical)

	v1.POST("/search", searchHandler.Search)
	v1.POST("/query", queryHandler.Query)

	v1.POST("/conversations", conversationHandler.Create)
	v1.GET("/conversations", conversationHandler.List)
	v1.GET("/conversations/:id", conversationHandler.Get)
	v1.PATCH("/conversations/:id", conversationHandler.Update)
	v1.DELETE("/conversations/:id", conversationHandler.Delete)

	return router
}
