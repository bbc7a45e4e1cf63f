package http

import (
	"github.com/gin-gonic/gin"

	"docubase/internal/bootstrap"
	"docubase/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	docHandler := handler.NewDocumentHandler(app.Service)
	queryHandler := handler.NewQueryHandler(app.Service, app.Config.Pipeline.DefaultTopK)

	v1 := router.Group("/api/v1")
	docs := v1.Group("/documents")
	docs.POST("", docHandler.Upload)
	docs.POST("/remote", docHandler.IngestRemote)
	docs.GET("", docHandler.List)
	docs.DELETE("/:id", docHandler.Delete)
	docs.POST("/:id/reindex", docHandler.Reindex)

	v1.POST("/query", queryHandler.Ask)

	return router
}
