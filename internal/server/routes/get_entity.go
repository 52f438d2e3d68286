package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func GetEntityHandler(c echo.Context) error {
	type getEntityParams struct {
		Name  string `query:"name" validate:"required"`
		Depth int    `query:"depth" validate:"omitempty,min=1"`
	}

	params := new(getEntityParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "Invalid request params"})
	}

	detail, err := engine(c).GetEntity(c.Request().Context(), params.Name, params.Depth)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, response{
		Message: "Entity found",
		Data:    detail,
	})
}
