package server

import (
	"github.com/graphfold/graphfold/internal/server/middleware"
	"github.com/graphfold/graphfold/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	apiRoutes.GET("/stats", routes.GetStatsHandler)
	apiRoutes.GET("/search", routes.SearchEntitiesHandler)
	apiRoutes.GET("/entity", routes.GetEntityHandler)
	apiRoutes.GET("/entities", routes.GetEntitiesHandler)
	apiRoutes.GET("/types", routes.GetTypesHandler)
	apiRoutes.GET("/communities", routes.SearchCommunitiesHandler)

	apiRoutes.POST("/ingest", routes.CreateIngestJobHandler)
}
