package database

import (
	"context"
	"fmt"
	"time"

	"spark-feed/models"
	"spark-feed/utils"

	"gorm.io/gorm"
)

// spotCounterColumns maps an action to the spot counter it bumps
var spotCounterColumns = map[string]string{
	models.ActionView:    "views",
	models.ActionLike:    "likes",
	models.ActionComment: "replies",
	models.ActionShare:   "shares",
}

// InteractionStore keeps interactions, location history and sessions in SQLite
type InteractionStore struct {
	db *gorm.DB
}

// NewInteractionStore creates an interaction store
func NewInteractionStore(db *gorm.DB) *InteractionStore {
	return &InteractionStore{db: db}
}

// FindInteractions returns matching interactions, newest first
func (s *InteractionStore) FindInteractions(ctx context.Context, filter models.InteractionFilter) ([]models.InteractionRow, error) {
	q := s.db.WithContext(ctx).Model(&models.Interaction{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if len(filter.Actions) > 0 {
		q = q.Where("action IN ?", filter.Actions)
	}
	q = applyTimeRange(q, filter.CreatedFrom, filter.CreatedBefore)
	q = applyBoundingBox(q, filter.Geo)
	q = q.Order("created_at DESC").Order("id DESC")
	if filter.Geo == nil && filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var interactions []models.Interaction
	if err := q.Find(&interactions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	if filter.Geo != nil {
		located := make([]locatedInteraction, len(interactions))
		for i, in := range interactions {
			located[i] = locatedInteraction{Interaction: in}
		}
		within := utils.FilterByDistance[locatedInteraction](located, filter.Geo.Center.Lat, filter.Geo.Center.Lon, filter.Geo.RadiusMeters)
		interactions = interactions[:0]
		for _, m := range within {
			interactions = append(interactions, m.Interaction)
			if filter.Limit > 0 && len(interactions) == filter.Limit {
				break
			}
		}
	}

	rows := make([]models.InteractionRow, len(interactions))
	for i, in := range interactions {
		rows[i] = models.InteractionRow{
			ID:          in.ID,
			UserID:      in.UserID,
			ContentID:   in.ContentID,
			ContentKind: models.ContentKind(in.ContentKind),
			Action:      in.Action,
			Latitude:    in.Latitude,
			Longitude:   in.Longitude,
			CreatedAt:   in.CreatedAt,
		}
	}
	return rows, nil
}

// FindLocationHistory returns up to limit recorded points, newest first
func (s *InteractionStore) FindLocationHistory(ctx context.Context, userID string, limit int) ([]models.LocationPoint, error) {
	var locations []models.UserLocation
	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Order("id DESC")
	if err := paginate(q, limit, 0).Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch location history: %w", err)
	}

	points := make([]models.LocationPoint, len(locations))
	for i, l := range locations {
		points[i] = models.LocationPoint{Lat: l.Latitude, Lon: l.Longitude, Timestamp: l.RecordedAt}
	}
	return points, nil
}

// FindEngagementAggregates summarizes sessions and interactions since the given time.
// Hours of day are bucketed in the server's local time zone.
func (s *InteractionStore) FindEngagementAggregates(ctx context.Context, userID string, since time.Time) (*models.EngagementAggregates, error) {
	db := s.db.WithContext(ctx)
	agg := &models.EngagementAggregates{
		ContentTypeCounts: map[models.ContentKind]int{},
		HourOfDayCounts:   map[int]int{},
	}

	var avg struct{ Minutes *float64 }
	err := db.Model(&models.UserSession{}).
		Select("AVG(duration_minutes) AS minutes").
		Where("user_id = ? AND started_at >= ?", userID, since.UTC()).
		Scan(&avg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sessions: %w", err)
	}
	if avg.Minutes != nil {
		agg.AvgSessionMinutes = *avg.Minutes
	}

	var kinds []struct {
		ContentKind string
		Total       int
	}
	err = db.Model(&models.Interaction{}).
		Select("content_kind, COUNT(*) AS total").
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Group("content_kind").
		Scan(&kinds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate content kinds: %w", err)
	}
	for _, k := range kinds {
		agg.ContentTypeCounts[models.ContentKind(k.ContentKind)] = k.Total
	}

	var times []time.Time
	err = db.Model(&models.Interaction{}).
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity hours: %w", err)
	}
	for _, t := range times {
		agg.HourOfDayCounts[t.Local().Hour()]++
	}

	return agg, nil
}

// FindViewerActions reports which of contentIDs userID liked, commented on or shared
func (s *InteractionStore) FindViewerActions(ctx context.Context, userID string, contentIDs []string) (map[string]models.ViewerInteraction, error) {
	out := map[string]models.ViewerInteraction{}
	if userID == "" || len(contentIDs) == 0 {
		return out, nil
	}

	var pairs []struct {
		ContentID string
		Action    string
	}
	err := s.db.WithContext(ctx).
		Model(&models.Interaction{}).
		Distinct("content_id", "action").
		Where("user_id = ? AND content_id IN ? AND action IN ?", userID, contentIDs,
			[]string{models.ActionLike, models.ActionComment, models.ActionShare}).
		Scan(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch viewer actions: %w", err)
	}

	for _, p := range pairs {
		vi := out[p.ContentID]
		switch p.Action {
		case models.ActionLike:
			vi.HasLiked = true
		case models.ActionComment:
			vi.HasCommented = true
		case models.ActionShare:
			vi.HasShared = true
		}
		out[p.ContentID] = vi
	}
	return out, nil
}

// RecordInteraction stores interaction and bumps the matching counter of the
// spot it targets. Unknown content yields ErrNotFound and nothing is stored.
func (s *InteractionStore) RecordInteraction(ctx context.Context, interaction *models.Interaction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch models.ContentKind(interaction.ContentKind) {
		case models.KindSpot:
			column, ok := spotCounterColumns[interaction.Action]
			if !ok {
				return fmt.Errorf("unknown action %q", interaction.Action)
			}
			res := tx.Model(&models.Spot{}).
				Where("id = ?", interaction.ContentID).
				UpdateColumn(column, gorm.Expr(column+" + ?", 1))
			if res.Error != nil {
				return fmt.Errorf("failed to update spot counters: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		case models.KindSpark:
			var count int64
			if err := tx.Model(&models.Spark{}).Where("id = ?", interaction.ContentID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to look up spark: %w", err)
			}
			if count == 0 {
				return ErrNotFound
			}
		default:
			return fmt.Errorf("unknown content kind %q", interaction.ContentKind)
		}

		if err := tx.Create(interaction).Error; err != nil {
			return fmt.Errorf("failed to insert interaction: %w", err)
		}
		return nil
	})
}

// RecordLocation appends a point to a user's location history
func (s *InteractionStore) RecordLocation(ctx context.Context, location *models.UserLocation) error {
	if err := s.db.WithContext(ctx).Create(location).Error; err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}
