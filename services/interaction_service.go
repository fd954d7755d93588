package services

import (
	"context"
	"fmt"
	"time"

	"spark-feed/logging"
	"spark-feed/models"
	"spark-feed/utils"
)

// InteractionService records engagement and location history, the inputs
// of personalization and of the daily digest
type InteractionService struct {
	store InteractionStore
	now   func() time.Time
}

// NewInteractionService creates an interaction service; a nil clock means time.Now
func NewInteractionService(store InteractionStore, clock func() time.Time) *InteractionService {
	if clock == nil {
		clock = time.Now
	}
	return &InteractionService{store: store, now: clock}
}

// RecordInteraction stores one interaction of userID
func (s *InteractionService) RecordInteraction(ctx context.Context, userID string, req models.RecordInteractionRequest) (*models.Interaction, error) {
	if !models.IsValidAction(req.Action) {
		return nil, fmt.Errorf("invalid action: %s", req.Action)
	}
	kind := models.ContentKind(req.ContentKind)
	if kind != models.KindSpot && kind != models.KindSpark {
		return nil, fmt.Errorf("invalid content kind: %s", req.ContentKind)
	}

	interaction := &models.Interaction{
		UserID:      userID,
		ContentID:   req.ContentID,
		ContentKind: string(kind),
		Action:      req.Action,
		CreatedAt:   s.now(),
	}
	if req.Lat != nil && req.Lon != nil {
		if err := utils.ValidateLocation(*req.Lat, *req.Lon); err != nil {
			return nil, err
		}
		interaction.Latitude = *req.Lat
		interaction.Longitude = *req.Lon
	}

	if err := s.store.RecordInteraction(ctx, interaction); err != nil {
		return nil, fmt.Errorf("failed to record interaction: %w", err)
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", userID).
		Str("content_id", req.ContentID).
		Str("action", req.Action).
		Msg("Recorded interaction")
	return interaction, nil
}

// RecordLocation appends a point to userID's location history
func (s *InteractionService) RecordLocation(ctx context.Context, userID string, lat, lon float64) (*models.UserLocation, error) {
	if err := utils.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}
	loc := &models.UserLocation{
		UserID:     userID,
		Latitude:   lat,
		Longitude:  lon,
		RecordedAt: s.now(),
	}
	if err := s.store.RecordLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("failed to record location: %w", err)
	}
	return loc, nil
}
