package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/graphfold/graphfold/internal/queue"
	"github.com/graphfold/graphfold/internal/server/middleware"
	"github.com/graphfold/graphfold/pkg/logger"
)

// CreateIngestJobHandler enqueues one ingest job for the worker: the S3
// prefix holding a batch of extraction output. The job is published to the
// ingest queue and picked up asynchronously; the run id in the response ties
// the request to the worker's logs.
func CreateIngestJobHandler(c echo.Context) error {
	type createIngestJobParams struct {
		Prefix string `json:"prefix" validate:"required"`
	}

	params := new(createIngestJobParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "Invalid request body"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, response{Message: "Missing required field: prefix"})
	}

	runID, err := gonanoid.New()
	if err != nil {
		logger.Error("[Server] Failed to generate run id", "err", err)
		return c.JSON(http.StatusInternalServerError, response{Message: "Internal server error"})
	}

	msg, err := json.Marshal(queue.QueueIngestMsg{
		RunID:  runID,
		Prefix: params.Prefix,
	})
	if err != nil {
		logger.Error("[Server] Failed to marshal ingest job", "err", err)
		return c.JSON(http.StatusInternalServerError, response{Message: "Internal server error"})
	}

	app := c.(*middleware.AppContext).App
	if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msg); err != nil {
		logger.Error("[Server] Failed to publish ingest job", "err", err)
		return c.JSON(http.StatusInternalServerError, response{Message: "Failed to queue ingest job"})
	}

	logger.Info("[Server] Ingest job queued", "run_id", runID, "prefix", params.Prefix)
	return c.JSON(http.StatusAccepted, response{
		Message: "Ingest job queued",
		Data: map[string]string{
			"run_id": runID,
			"prefix": params.Prefix,
		},
	})
}
