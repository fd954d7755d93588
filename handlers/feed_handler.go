package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"spark-feed/config"
	"spark-feed/logging"
	"spark-feed/metrics"
	"spark-feed/models"
	"spark-feed/services"

	"github.com/gin-gonic/gin"
)

// FeedGenerator assembles one feed page
type FeedGenerator interface {
	GenerateFeed(ctx context.Context, userID string, query models.FeedQuery, profile *models.PersonalizationProfile) (*models.FeedPage, error)
}

// ProfileSource builds the personalization profile of a user
type ProfileSource interface {
	Build(ctx context.Context, userID string) (*models.PersonalizationProfile, error)
}

// DigestBuilder builds Today's Connection
type DigestBuilder interface {
	BuildDigest(ctx context.Context, req services.DigestRequest) (*models.DigestResult, error)
}

type FeedHandler struct {
	feed     FeedGenerator
	profiles ProfileSource
	digests  DigestBuilder
	now      func() time.Time
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feed FeedGenerator, profiles ProfileSource, digests DigestBuilder) *FeedHandler {
	return &FeedHandler{
		feed:     feed,
		profiles: profiles,
		digests:  digests,
		now:      time.Now,
	}
}

// feedParams are the query parameters shared by the feed endpoints.
// Pointers distinguish "absent" from zero so defaults apply only when absent.
type feedParams struct {
	Limit        *int     `form:"limit" binding:"omitempty,min=1,max=50"`
	Offset       *int     `form:"offset" binding:"omitempty,min=0"`
	ContentType  string   `form:"contentType" binding:"omitempty,oneof=spot spark mixed"`
	SortBy       string   `form:"sortBy" binding:"omitempty,oneof=recent popular relevant nearby"`
	Lat          *float64 `form:"lat" binding:"omitempty,latitude"`
	Lon          *float64 `form:"lon" binding:"omitempty,longitude"`
	RadiusMeters *float64 `form:"radiusMeters" binding:"omitempty,min=100,max=50000"`
	Tags         string   `form:"tags"`
	HoursAgo     *int     `form:"hoursAgo" binding:"omitempty,min=1,max=168"`
	Debug        bool     `form:"debug"`
}

// digestParams are the query parameters of Today's Connection
type digestParams struct {
	Date         string   `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Lat          *float64 `form:"lat" binding:"omitempty,latitude"`
	Lon          *float64 `form:"lon" binding:"omitempty,longitude"`
	RadiusMeters *float64 `form:"radiusMeters" binding:"omitempty,min=100,max=50000"`
}

var errPartialLocation = errors.New("lat and lon must be provided together")

// toQuery applies the configured defaults to the bound parameters
func (p feedParams) toQuery() (models.FeedQuery, error) {
	q := models.FeedQuery{
		Limit:        config.DefaultFeedLimit,
		ContentType:  models.ContentMixed,
		SortBy:       models.SortRelevant,
		RadiusMeters: config.DefaultRadiusMeters,
		HoursAgo:     config.DefaultHoursAgo,
		Tags:         splitTags(p.Tags),
		Debug:        p.Debug,
	}
	if p.Limit != nil {
		q.Limit = *p.Limit
	}
	if p.Offset != nil {
		q.Offset = *p.Offset
	}
	if p.ContentType != "" {
		q.ContentType = models.ContentTypeFilter(p.ContentType)
	}
	if p.SortBy != "" {
		q.SortBy = models.SortBy(p.SortBy)
	}
	if p.RadiusMeters != nil {
		q.RadiusMeters = *p.RadiusMeters
	}
	if p.HoursAgo != nil {
		q.HoursAgo = *p.HoursAgo
	}

	loc, err := coordinate(p.Lat, p.Lon)
	if err != nil {
		return models.FeedQuery{}, err
	}
	q.ReferenceLocation = loc
	return q, nil
}

func coordinate(lat, lon *float64) (*models.Coordinate, error) {
	switch {
	case lat == nil && lon == nil:
		return nil, nil
	case lat == nil || lon == nil:
		return nil, errPartialLocation
	default:
		return &models.Coordinate{Lat: *lat, Lon: *lon}, nil
	}
}

// bindFeedQuery validates the request; it writes the 400 itself and reports false on failure
func bindFeedQuery(c *gin.Context) (models.FeedQuery, bool) {
	var params feedParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondValidationError(c, err)
		return models.FeedQuery{}, false
	}
	query, err := params.toQuery()
	if err != nil {
		respondBadRequest(c, err.Error())
		return models.FeedQuery{}, false
	}
	return query, true
}

// GetFeed returns the personalized feed of the caller
// GET /feed?limit=20&offset=0&contentType=mixed&sortBy=relevant&lat=..&lon=..&radiusMeters=..&tags=a,b&hoursAgo=24
func (h *FeedHandler) GetFeed(c *gin.Context) {
	query, ok := bindFeedQuery(c)
	if !ok {
		return
	}

	uid := userID(c)
	profile, err := h.profiles.Build(c.Request.Context(), uid)
	if err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("user_id", uid).Msg("Failed to build profile")
		respondInternalError(c)
		return
	}

	h.respondWithFeed(c, config.AlgorithmRelevance, uid, query, profile)
}

// GetTrending returns the most popular content without personalization
// GET /feed/trending?limit=20&contentType=spot&hoursAgo=24
func (h *FeedHandler) GetTrending(c *gin.Context) {
	query, ok := bindFeedQuery(c)
	if !ok {
		return
	}
	query.SortBy = models.SortPopular

	h.respondWithFeed(c, config.AlgorithmTrending, userID(c), query, nil)
}

// GetNearby returns content around a location, closest first
// GET /feed/location?lat=37.7749&lon=-122.4194&radiusMeters=2000
func (h *FeedHandler) GetNearby(c *gin.Context) {
	query, ok := bindFeedQuery(c)
	if !ok {
		return
	}
	if query.ReferenceLocation == nil {
		respondBadRequest(c, "lat and lon are required")
		return
	}
	query.SortBy = models.SortNearby

	h.respondWithFeed(c, config.AlgorithmLocation, userID(c), query, nil)
}

func (h *FeedHandler) respondWithFeed(c *gin.Context, algorithm, uid string, query models.FeedQuery, profile *models.PersonalizationProfile) {
	start := time.Now()
	page, err := h.feed.GenerateFeed(c.Request.Context(), uid, query, profile)
	if err != nil {
		logging.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("user_id", uid).
			Str("algorithm", algorithm).
			Msg("Feed generation failed")
		respondInternalError(c)
		return
	}
	metrics.RecordFeed(algorithm, time.Since(start))

	items := page.Items
	if items == nil {
		items = []models.FeedItem{}
	}

	c.JSON(http.StatusOK, models.FeedResponse{
		Items:      items,
		Pagination: models.NewPagination(page.Total, query.Offset, query.Limit),
		Metadata: models.FeedMetadata{
			Algorithm:    algorithm,
			GeneratedAt:  h.now().UTC(),
			UserLocation: query.ReferenceLocation,
			Filters:      feedFilters(query),
		},
	})
}

// GetTodaysConnection returns the caller's daily digest
// GET /feed/todays-connection?date=2024-01-15&lat=..&lon=..&radiusMeters=10000
func (h *FeedHandler) GetTodaysConnection(c *gin.Context) {
	var params digestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondValidationError(c, err)
		return
	}
	loc, err := coordinate(params.Lat, params.Lon)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	req := services.DigestRequest{
		UserID:            userID(c),
		Date:              params.Date,
		ReferenceLocation: loc,
		RadiusMeters:      config.DefaultDigestRadiusMeters,
	}
	if params.RadiusMeters != nil {
		req.RadiusMeters = *params.RadiusMeters
	}

	digest, err := h.digests.BuildDigest(c.Request.Context(), req)
	if errors.Is(err, services.ErrInvalidDate) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("user_id", req.UserID).Msg("Digest build failed")
		respondInternalError(c)
		return
	}

	c.JSON(http.StatusOK, digest)
}
