package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/graphfold/graphfold/internal/server/middleware"
	"github.com/graphfold/graphfold/pkg/common"
	"github.com/graphfold/graphfold/pkg/query"
)

type response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func engine(c echo.Context) *query.Engine {
	return c.(*middleware.AppContext).App.Engine
}

// respondError maps the query error taxonomy onto HTTP status codes. Caller
// mistakes are 4xx, store trouble is 5xx; anything unmapped stays a plain
// internal error so no store detail leaks to clients.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, response{Message: err.Error()})
	case errors.Is(err, common.ErrNotFound):
		return c.JSON(http.StatusNotFound, response{Message: err.Error()})
	case errors.Is(err, common.ErrTimeout):
		return c.JSON(http.StatusGatewayTimeout, response{Message: "Query timed out"})
	default:
		return c.JSON(http.StatusInternalServerError, response{Message: "Internal server error"})
	}
}
