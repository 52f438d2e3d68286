package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func SearchEntitiesHandler(c echo.Context) error {
	type searchParams struct {
		Query string `query:"q" validate:"required"`
		Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
	}

	params := new(searchParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "Invalid request params"})
	}

	entities, err := engine(c).Search(c.Request().Context(), params.Query, params.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, response{
		Message: "Search results",
		Data:    entities,
	})
}
