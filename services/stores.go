package services

import (
	"context"
	"time"

	"spark-feed/models"
)

// ContentStore returns candidate spots and sparks. Geo, time and tag
// predicates are applied by the store, not by the caller.
type ContentStore interface {
	// FindSpots returns one page of matching spots and the total match count
	FindSpots(ctx context.Context, filter models.SpotFilter) ([]models.SpotRow, int64, error)
	// FindSparks returns one page of matching sparks and the total match count
	FindSparks(ctx context.Context, filter models.SparkFilter) ([]models.SparkRow, int64, error)
	// FindSpotsByIDs looks up spots regardless of status; unknown IDs are skipped
	FindSpotsByIDs(ctx context.Context, ids []string) ([]models.SpotRow, error)
}

// InteractionStore records and queries user engagement history
type InteractionStore interface {
	FindInteractions(ctx context.Context, filter models.InteractionFilter) ([]models.InteractionRow, error)
	// FindLocationHistory returns up to limit points, newest first
	FindLocationHistory(ctx context.Context, userID string, limit int) ([]models.LocationPoint, error)
	FindEngagementAggregates(ctx context.Context, userID string, since time.Time) (*models.EngagementAggregates, error)
	// FindViewerActions reports what userID already did with each content ID.
	// IDs without interactions are absent from the map.
	FindViewerActions(ctx context.Context, userID string, contentIDs []string) (map[string]models.ViewerInteraction, error)
	// RecordInteraction stores an interaction and bumps the counters of the
	// spot it targets.
	RecordInteraction(ctx context.Context, interaction *models.Interaction) error
	RecordLocation(ctx context.Context, location *models.UserLocation) error
}

// UserDirectory resolves user profiles
type UserDirectory interface {
	// FindUser returns database.ErrNotFound for unknown users
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindUsers(ctx context.Context, ids []string) (map[string]models.User, error)
}

// SpotExpirer moves active spots past their expiry to expired
type SpotExpirer interface {
	ExpireSpots(ctx context.Context, now time.Time) (int64, error)
}
