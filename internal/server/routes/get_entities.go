package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func GetEntitiesHandler(c echo.Context) error {
	type getEntitiesParams struct {
		Type  string `query:"type"`
		Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
	}

	params := new(getEntitiesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "Invalid request params"})
	}

	ctx := c.Request().Context()
	eng := engine(c)

	if params.Type != "" {
		entities, err := eng.ByType(ctx, params.Type, params.Limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, response{
			Message: "Entities by type",
			Data:    entities,
		})
	}

	entities, err := eng.ListEntities(ctx, params.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, response{
		Message: "Entities",
		Data:    entities,
	})
}
