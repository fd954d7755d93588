package services

import (
	"context"
	"sync"
	"time"

	"spark-feed/database"
	"spark-feed/models"
)

var testNow = time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fakeContentStore records every filter it is queried with
type fakeContentStore struct {
	mu         sync.Mutex
	spotCalls  []models.SpotFilter
	sparkCalls []models.SparkFilter

	spotsFn  func(models.SpotFilter) ([]models.SpotRow, int64, error)
	sparksFn func(models.SparkFilter) ([]models.SparkRow, int64, error)
	byID     map[string]models.SpotRow
	byIDsErr error
}

func (f *fakeContentStore) FindSpots(_ context.Context, filter models.SpotFilter) ([]models.SpotRow, int64, error) {
	f.mu.Lock()
	f.spotCalls = append(f.spotCalls, filter)
	f.mu.Unlock()
	if f.spotsFn == nil {
		return nil, 0, nil
	}
	return f.spotsFn(filter)
}

func (f *fakeContentStore) FindSparks(_ context.Context, filter models.SparkFilter) ([]models.SparkRow, int64, error) {
	f.mu.Lock()
	f.sparkCalls = append(f.sparkCalls, filter)
	f.mu.Unlock()
	if f.sparksFn == nil {
		return nil, 0, nil
	}
	return f.sparksFn(filter)
}

func (f *fakeContentStore) FindSpotsByIDs(_ context.Context, ids []string) ([]models.SpotRow, error) {
	if f.byIDsErr != nil {
		return nil, f.byIDsErr
	}
	var rows []models.SpotRow
	for _, id := range ids {
		if row, ok := f.byID[id]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *fakeContentStore) spotCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.spotCalls)
}

// fakeInteractionStore serves canned history
type fakeInteractionStore struct {
	mu sync.Mutex

	interactionsFn func(models.InteractionFilter) ([]models.InteractionRow, error)
	locations      []models.LocationPoint
	locationsErr   error
	aggregates     *models.EngagementAggregates
	aggregatesErr  error
	viewer         map[string]models.ViewerInteraction
	viewerErr      error
	viewerCalls    int

	recorded  []*models.Interaction
	locs      []*models.UserLocation
	recordErr error
}

func (f *fakeInteractionStore) FindInteractions(_ context.Context, filter models.InteractionFilter) ([]models.InteractionRow, error) {
	if f.interactionsFn == nil {
		return nil, nil
	}
	return f.interactionsFn(filter)
}

func (f *fakeInteractionStore) FindLocationHistory(_ context.Context, _ string, _ int) ([]models.LocationPoint, error) {
	return f.locations, f.locationsErr
}

func (f *fakeInteractionStore) FindEngagementAggregates(_ context.Context, _ string, _ time.Time) (*models.EngagementAggregates, error) {
	return f.aggregates, f.aggregatesErr
}

func (f *fakeInteractionStore) FindViewerActions(_ context.Context, _ string, _ []string) (map[string]models.ViewerInteraction, error) {
	f.mu.Lock()
	f.viewerCalls++
	f.mu.Unlock()
	return f.viewer, f.viewerErr
}

func (f *fakeInteractionStore) RecordInteraction(_ context.Context, i *models.Interaction) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, i)
	return nil
}

func (f *fakeInteractionStore) RecordLocation(_ context.Context, l *models.UserLocation) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.locs = append(f.locs, l)
	return nil
}

// fakeUserDirectory returns database.ErrNotFound for unknown users
type fakeUserDirectory struct {
	users map[string]models.User
	err   error
}

func (f *fakeUserDirectory) FindUser(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserDirectory) FindUsers(_ context.Context, ids []string) (map[string]models.User, error) {
	out := map[string]models.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, f.err
}

// fakeRetriever returns canned results per kind and records the limits asked for
type fakeRetriever struct {
	mu      sync.Mutex
	limits  map[models.ContentKind]int
	results map[models.ContentKind]RetrievalResult
	panics  bool
}

func (f *fakeRetriever) Fetch(_ context.Context, _ models.FeedQuery, kind models.ContentKind, _ string, limit int) RetrievalResult {
	f.mu.Lock()
	if f.limits == nil {
		f.limits = map[models.ContentKind]int{}
	}
	f.limits[kind] = limit
	f.mu.Unlock()

	if f.panics {
		panic("boom")
	}
	return f.results[kind]
}

func (f *fakeRetriever) called(kind models.ContentKind) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	limit, ok := f.limits[kind]
	return limit, ok
}

func spotRow(id string, lat, lon float64, createdAt time.Time, tags ...string) models.SpotRow {
	s := models.Spot{
		ID:        id,
		UserID:    "author_" + id,
		Title:     "Spot " + id,
		Latitude:  lat,
		Longitude: lon,
		Status:    models.SpotStatusActive,
		CreatedAt: createdAt,
	}
	s.SetTags(tags)
	return models.SpotRow{Spot: s, Author: models.Author{ID: s.UserID, DisplayName: "Author " + id}}
}

func sparkRow(id, user1, user2 string, lat, lon float64, createdAt time.Time) models.SparkRow {
	return models.SparkRow{
		Spark: models.Spark{
			ID:        id,
			User1ID:   user1,
			User2ID:   user2,
			Latitude:  lat,
			Longitude: lon,
			Status:    models.SparkStatusPending,
			CreatedAt: createdAt,
		},
		User1: models.Author{ID: user1, DisplayName: "User " + user1},
		User2: models.Author{ID: user2, DisplayName: "User " + user2},
	}
}

func feedItem(id string, kind models.ContentKind, createdAt time.Time, stats models.ItemStats) models.FeedItem {
	return models.FeedItem{
		ID:        id,
		Kind:      kind,
		CreatedAt: createdAt,
		Stats:     stats,
		Tags:      []string{},
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}
