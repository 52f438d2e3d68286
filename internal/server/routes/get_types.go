package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func GetTypesHandler(c echo.Context) error {
	types, err := engine(c).ListTypes(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, response{
		Message: "Entity types",
		Data:    types,
	})
}
