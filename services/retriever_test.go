package services

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"spark-feed/config"
	"spark-feed/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{QueryTimeout: time.Second},
		Breaker: config.BreakerConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			MinRequests:  2,
			FailureRatio: 0.5,
		},
	}
}

func TestContentRetriever_SpotFilter(t *testing.T) {
	store := &fakeContentStore{
		spotsFn: func(models.SpotFilter) ([]models.SpotRow, int64, error) {
			return []models.SpotRow{spotRow("a", 37.77, -122.41, testNow, "coffee")}, 7, nil
		},
	}
	r := NewContentRetriever(store, testConfig(), fixedClock(testNow))

	query := models.FeedQuery{
		SortBy:            models.SortPopular,
		HoursAgo:          12,
		Tags:              []string{"coffee"},
		ReferenceLocation: &models.Coordinate{Lat: 37.77, Lon: -122.41},
		RadiusMeters:      2000,
	}
	res := r.Fetch(context.Background(), query, models.KindSpot, "u1", 40)
	if res.Failed() {
		t.Fatalf("Fetch() failed: %v", res.Err)
	}
	if len(res.Value.Items) != 1 || res.Value.TotalMatching != 7 {
		t.Errorf("Fetch() = %d items, total %d, expected 1 and 7", len(res.Value.Items), res.Value.TotalMatching)
	}
	item := res.Value.Items[0]
	if item.Kind != models.KindSpot || item.RelevanceScore != 0 || len(item.Tags) != 1 {
		t.Errorf("item = %+v, expected an unscored spot with its tags", item)
	}

	f := store.spotCalls[0]
	if len(f.Statuses) != 1 || f.Statuses[0] != models.SpotStatusActive {
		t.Errorf("Statuses = %v, expected [active]", f.Statuses)
	}
	if f.ExcludeOwnerID != "u1" {
		t.Errorf("ExcludeOwnerID = %q, expected u1", f.ExcludeOwnerID)
	}
	if !f.CreatedFrom.Equal(testNow.Add(-12 * time.Hour)) {
		t.Errorf("CreatedFrom = %v, expected 12h before now", f.CreatedFrom)
	}
	if f.Geo == nil || f.Geo.RadiusMeters != 2000 {
		t.Errorf("Geo = %+v, expected a 2000m radius", f.Geo)
	}
	if f.Sort != models.SpotSortLikesDesc || f.Limit != 40 {
		t.Errorf("Sort = %s, Limit = %d, expected likes_desc and 40", f.Sort, f.Limit)
	}
}

func TestSpotSortHint(t *testing.T) {
	loc := &models.Coordinate{Lat: 1, Lon: 1}
	tests := []struct {
		query    models.FeedQuery
		expected models.SpotSort
	}{
		{models.FeedQuery{SortBy: models.SortRecent}, models.SpotSortCreatedDesc},
		{models.FeedQuery{SortBy: models.SortPopular}, models.SpotSortLikesDesc},
		{models.FeedQuery{SortBy: models.SortNearby, ReferenceLocation: loc}, models.SpotSortDistanceAsc},
		{models.FeedQuery{SortBy: models.SortNearby}, models.SpotSortCreatedDesc},
		{models.FeedQuery{SortBy: models.SortRelevant, ReferenceLocation: loc}, models.SpotSortCreatedDesc},
	}

	for _, tt := range tests {
		if got := spotSortHint(tt.query); got != tt.expected {
			t.Errorf("spotSortHint(%s) = %s, expected %s", tt.query.SortBy, got, tt.expected)
		}
	}
}

func TestContentRetriever_Sparks(t *testing.T) {
	store := &fakeContentStore{
		sparksFn: func(models.SparkFilter) ([]models.SparkRow, int64, error) {
			return []models.SparkRow{sparkRow("s1", "u2", "u1", 37.77, -122.41, testNow)}, 1, nil
		},
	}
	r := NewContentRetriever(store, testConfig(), fixedClock(testNow))

	res := r.Fetch(context.Background(), models.FeedQuery{HoursAgo: 24}, models.KindSpark, "u1", 16)
	if res.Failed() || len(res.Value.Items) != 1 {
		t.Fatalf("Fetch() = %+v, expected one spark", res)
	}
	item := res.Value.Items[0]
	if item.Author.ID != "u2" || item.Stats != (models.ItemStats{}) {
		t.Errorf("spark item = %+v, expected counterparty u2 as author and zero stats", item)
	}

	f := store.sparkCalls[0]
	if f.ParticipantID != "u1" || f.Statuses[0] != models.SparkStatusPending || f.Limit != 16 || f.Geo != nil {
		t.Errorf("spark filter = %+v", f)
	}
}

func TestContentRetriever_Anonymous(t *testing.T) {
	store := &fakeContentStore{}
	r := NewContentRetriever(store, testConfig(), fixedClock(testNow))
	ctx := context.Background()

	res := r.Fetch(ctx, models.FeedQuery{}, models.KindSpark, models.AnonymousUserID, 10)
	if res.Failed() || len(res.Value.Items) != 0 {
		t.Errorf("anonymous spark Fetch() = %+v, expected empty", res)
	}
	if len(store.sparkCalls) != 0 {
		t.Error("anonymous spark Fetch() should not query the store")
	}

	r.Fetch(ctx, models.FeedQuery{}, models.KindSpot, models.AnonymousUserID, 10)
	if store.spotCalls[0].ExcludeOwnerID != "" {
		t.Errorf("anonymous ExcludeOwnerID = %q, expected none", store.spotCalls[0].ExcludeOwnerID)
	}
}

func TestContentRetriever_StoreFailureDegrades(t *testing.T) {
	storeErr := errors.New("connection reset")
	store := &fakeContentStore{
		spotsFn: func(models.SpotFilter) ([]models.SpotRow, int64, error) {
			return nil, 0, storeErr
		},
	}
	r := NewContentRetriever(store, testConfig(), fixedClock(testNow))

	res := r.Fetch(context.Background(), models.FeedQuery{}, models.KindSpot, "u1", 10)
	if !res.Failed() {
		t.Fatal("Fetch() should report the failure")
	}
	if res.Err.Source != "spots" || !errors.Is(res.Err, storeErr) {
		t.Errorf("Fetch() error = %v, expected spots source wrapping the store error", res.Err)
	}
	if got := res.UnwrapOr(Retrieved{}); len(got.Items) != 0 || got.TotalMatching != 0 {
		t.Errorf("UnwrapOr() = %+v, expected empty", got)
	}
}

func TestContentRetriever_BreakerOpensAfterFailures(t *testing.T) {
	store := &fakeContentStore{
		spotsFn: func(models.SpotFilter) ([]models.SpotRow, int64, error) {
			return nil, 0, errors.New("down")
		},
	}
	r := NewContentRetriever(store, testConfig(), fixedClock(testNow))
	ctx := context.Background()

	r.Fetch(ctx, models.FeedQuery{}, models.KindSpot, "u1", 10)
	r.Fetch(ctx, models.FeedQuery{}, models.KindSpot, "u1", 10)
	res := r.Fetch(ctx, models.FeedQuery{}, models.KindSpot, "u1", 10)

	if !res.Failed() || !errors.Is(res.Err, gobreaker.ErrOpenState) {
		t.Errorf("Fetch() error = %v, expected open circuit", res.Err)
	}
	if n := store.spotCallCount(); n != 2 {
		t.Errorf("store calls = %d, expected 2 before the circuit opened", n)
	}

	// sparks have their own breaker
	spark := r.Fetch(ctx, models.FeedQuery{}, models.KindSpark, "u1", 10)
	if spark.Failed() {
		t.Errorf("spark Fetch() = %v, expected the spark breaker to stay closed", spark.Err)
	}
}
