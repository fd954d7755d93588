package services

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"spark-feed/config"
	"spark-feed/logging"
	"spark-feed/metrics"
	"spark-feed/models"
)

// Retrieved is one page of candidates from a content source
type Retrieved struct {
	Items         []models.FeedItem
	TotalMatching int
}

// RetrievalResult is the outcome of one ContentRetriever.Fetch
type RetrievalResult = Result[Retrieved]

// Retriever fetches candidates of one kind for a feed query
type Retriever interface {
	Fetch(ctx context.Context, query models.FeedQuery, kind models.ContentKind, userID string, limit int) RetrievalResult
}

// ContentRetriever turns a FeedQuery into store filters and maps the rows
// into unscored feed items. Each kind sits behind its own circuit breaker.
type ContentRetriever struct {
	store        ContentStore
	spotBreaker  *gobreaker.CircuitBreaker[Retrieved]
	sparkBreaker *gobreaker.CircuitBreaker[Retrieved]
	queryTimeout time.Duration
	now          func() time.Time
}

// NewContentRetriever creates a retriever; a nil clock means time.Now
func NewContentRetriever(store ContentStore, cfg *config.Config, clock func() time.Time) *ContentRetriever {
	if clock == nil {
		clock = time.Now
	}
	return &ContentRetriever{
		store:        store,
		spotBreaker:  newSourceBreaker[Retrieved]("content-spots", cfg.Breaker),
		sparkBreaker: newSourceBreaker[Retrieved]("content-sparks", cfg.Breaker),
		queryTimeout: cfg.Database.QueryTimeout,
		now:          clock,
	}
}

// Fetch returns up to limit candidates of kind for userID. Store errors are
// logged and returned as a failed result, never as a panic or bare error.
func (r *ContentRetriever) Fetch(ctx context.Context, query models.FeedQuery, kind models.ContentKind, userID string, limit int) RetrievalResult {
	source := string(kind) + "s"
	start := time.Now()

	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	var (
		out Retrieved
		err error
	)
	if kind == models.KindSpark {
		out, err = executeWithBreaker(r.sparkBreaker, func() (Retrieved, error) {
			return r.fetchSparks(ctx, query, userID, limit)
		})
	} else {
		out, err = executeWithBreaker(r.spotBreaker, func() (Retrieved, error) {
			return r.fetchSpots(ctx, query, userID, limit)
		})
	}
	metrics.RecordContentFetch(source, time.Since(start), err)

	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("source", source).Str("user_id", userID).Msg("Content fetch failed, continuing without it")
		return Failed[Retrieved](source, err)
	}
	return Ok(out)
}

func (r *ContentRetriever) fetchSpots(ctx context.Context, query models.FeedQuery, userID string, limit int) (Retrieved, error) {
	filter := models.SpotFilter{
		Statuses:    []string{models.SpotStatusActive},
		CreatedFrom: query.Since(r.now()),
		Geo:         geoFilter(query.ReferenceLocation, query.RadiusMeters),
		AnyTags:     query.Tags,
		Sort:        spotSortHint(query),
		Limit:       limit,
	}
	// spots are for discovery; your own content is not news to you
	if userID != models.AnonymousUserID {
		filter.ExcludeOwnerID = userID
	}

	rows, total, err := r.store.FindSpots(ctx, filter)
	if err != nil {
		return Retrieved{}, err
	}

	items := make([]models.FeedItem, len(rows))
	for i, row := range rows {
		items[i] = row.ToFeedItem()
	}
	return Retrieved{Items: items, TotalMatching: int(total)}, nil
}

func (r *ContentRetriever) fetchSparks(ctx context.Context, query models.FeedQuery, userID string, limit int) (Retrieved, error) {
	// sparks are dyadic; an anonymous viewer takes part in none
	if userID == models.AnonymousUserID {
		return Retrieved{Items: []models.FeedItem{}}, nil
	}

	rows, total, err := r.store.FindSparks(ctx, models.SparkFilter{
		Statuses:      []string{models.SparkStatusPending},
		ParticipantID: userID,
		CreatedFrom:   query.Since(r.now()),
		Geo:           geoFilter(query.ReferenceLocation, query.RadiusMeters),
		Limit:         limit,
	})
	if err != nil {
		return Retrieved{}, err
	}

	items := make([]models.FeedItem, len(rows))
	for i, row := range rows {
		items[i] = row.ToFeedItem(userID)
	}
	return Retrieved{Items: items, TotalMatching: int(total)}, nil
}

// spotSortHint maps the feed sort onto the store ordering. Relevance is
// ranked later, so the store returns newest first.
func spotSortHint(query models.FeedQuery) models.SpotSort {
	switch query.SortBy {
	case models.SortPopular:
		return models.SpotSortLikesDesc
	case models.SortNearby:
		if query.ReferenceLocation != nil {
			return models.SpotSortDistanceAsc
		}
	}
	return models.SpotSortCreatedDesc
}

func geoFilter(center *models.Coordinate, radiusMeters float64) *models.GeoFilter {
	if center == nil {
		return nil
	}
	return &models.GeoFilter{Center: *center, RadiusMeters: radiusMeters}
}
