package handlers

import (
	"context"
	"errors"
	"net/http"

	"spark-feed/database"
	"spark-feed/logging"
	"spark-feed/models"
	"spark-feed/utils"

	"github.com/gin-gonic/gin"
)

// InteractionRecorder stores engagement and location history
type InteractionRecorder interface {
	RecordInteraction(ctx context.Context, userID string, req models.RecordInteractionRequest) (*models.Interaction, error)
	RecordLocation(ctx context.Context, userID string, lat, lon float64) (*models.UserLocation, error)
}

type InteractionHandler struct {
	recorder InteractionRecorder
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(recorder InteractionRecorder) *InteractionHandler {
	return &InteractionHandler{recorder: recorder}
}

// RecordInteraction stores a view, like, comment or share of the caller
// POST /interactions {"contentId":"spot_1","contentKind":"spot","action":"like"}
func (h *InteractionHandler) RecordInteraction(c *gin.Context) {
	var req models.RecordInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		respondBadRequest(c, errPartialLocation.Error())
		return
	}

	uid := userID(c)
	interaction, err := h.recorder.RecordInteraction(c.Request.Context(), uid, req)
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondNotFound(c, req.ContentKind+" "+req.ContentID+" does not exist")
		return
	case errors.Is(err, utils.ErrInvalidLocation):
		respondBadRequest(c, err.Error())
		return
	case err != nil:
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("user_id", uid).Msg("Failed to record interaction")
		respondInternalError(c)
		return
	}

	c.JSON(http.StatusCreated, interaction)
}

// RecordLocation appends a point to the caller's location history
// POST /locations {"lat":37.7749,"lon":-122.4194}
func (h *InteractionHandler) RecordLocation(c *gin.Context) {
	var req models.RecordLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	uid := userID(c)
	loc, err := h.recorder.RecordLocation(c.Request.Context(), uid, *req.Lat, *req.Lon)
	switch {
	case errors.Is(err, utils.ErrInvalidLocation):
		respondBadRequest(c, err.Error())
		return
	case err != nil:
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("user_id", uid).Msg("Failed to record location")
		respondInternalError(c)
		return
	}

	c.JSON(http.StatusCreated, loc)
}
