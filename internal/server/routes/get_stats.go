package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func GetStatsHandler(c echo.Context) error {
	stats, err := engine(c).Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, response{
		Message: "Graph statistics",
		Data:    stats,
	})
}
