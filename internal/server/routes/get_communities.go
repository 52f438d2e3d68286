package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func SearchCommunitiesHandler(c echo.Context) error {
	type searchCommunitiesParams struct {
		Query string `query:"q" validate:"required"`
		Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
	}

	params := new(searchCommunitiesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "Invalid request params"})
	}

	communities, err := engine(c).SearchCommunities(c.Request().Context(), params.Query, params.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, response{
		Message: "Community search results",
		Data:    communities,
	})
}
