package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"spark-feed/config"
	"spark-feed/logging"
	"spark-feed/metrics"
	"spark-feed/models"
	"spark-feed/utils"
)

// DigestRequest asks for one user's Today's Connection
type DigestRequest struct {
	UserID string
	// Date is YYYY-MM-DD in the server's local calendar; empty means today
	Date              string
	ReferenceLocation *models.Coordinate
	RadiusMeters      float64
}

// Narrator writes an optional one-line narrative for a finished digest
type Narrator interface {
	Narrate(ctx context.Context, userID string, digest *models.DigestResult) (string, error)
}

// DailyDigestAggregator builds Today's Connection
type DailyDigestAggregator struct {
	content            ContentStore
	interactions       InteractionStore
	narrator           Narrator
	revisitConcurrency int
	now                func() time.Time
	location           *time.Location
}

// NewDailyDigestAggregator creates a digest aggregator. narrator may be nil.
func NewDailyDigestAggregator(content ContentStore, interactions InteractionStore, narrator Narrator, revisitConcurrency int, clock func() time.Time) *DailyDigestAggregator {
	if clock == nil {
		clock = time.Now
	}
	if revisitConcurrency < 1 {
		revisitConcurrency = 1
	}
	return &DailyDigestAggregator{
		content:            content,
		interactions:       interactions,
		narrator:           narrator,
		revisitConcurrency: revisitConcurrency,
		now:                clock,
		location:           time.Local,
	}
}

// dayActivity is everything the user did during one calendar day
type dayActivity struct {
	sparks       []models.SparkRow
	spots        []models.SpotRow
	revisited    []bool // parallel to spots
	interactions []models.InteractionRow
}

// BuildDigest gathers the day's sparks, spots and meaningful interactions and
// summarizes them. Each source degrades to empty on failure, so a partial
// day still yields a digest.
func (a *DailyDigestAggregator) BuildDigest(ctx context.Context, req DigestRequest) (*models.DigestResult, error) {
	start := time.Now()
	defer func() { metrics.DigestBuildDuration.Observe(time.Since(start).Seconds()) }()

	dayStart, err := a.dayStart(req.Date)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	radius := req.RadiusMeters
	if radius <= 0 {
		radius = config.DefaultDigestRadiusMeters
	}
	geo := geoFilter(req.ReferenceLocation, radius)

	day := a.fetchDay(ctx, req.UserID, dayStart, dayEnd, geo)
	day.revisited = a.detectRevisits(ctx, req.UserID, day.spots, dayStart)

	result := &models.DigestResult{
		Date:            dayStart.Format(config.DigestDateLayout),
		Summary:         summarize(day),
		Highlights:      a.highlights(req.UserID, day),
		Insights:        buildInsights(req.UserID, day, a.location),
		Recommendations: recommend(req.UserID, day),
	}

	if a.narrator != nil {
		narrative, err := a.narrator.Narrate(ctx, req.UserID, result)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("user_id", req.UserID).Msg("Digest narrative unavailable")
		} else {
			result.Narrative = narrative
		}
	}
	return result, nil
}

// dayStart returns local midnight of date, or of today when date is empty
func (a *DailyDigestAggregator) dayStart(date string) (time.Time, error) {
	if date == "" {
		now := a.now().In(a.location)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.location), nil
	}
	t, err := time.ParseInLocation(config.DigestDateLayout, date, a.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// fetchDay runs the three source queries concurrently
func (a *DailyDigestAggregator) fetchDay(ctx context.Context, userID string, from, before time.Time, geo *models.GeoFilter) dayActivity {
	var (
		wg           sync.WaitGroup
		sparks       Result[[]models.SparkRow]
		spots        Result[[]models.SpotRow]
		interactions Result[[]models.InteractionRow]
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		rows, _, err := a.content.FindSparks(ctx, models.SparkFilter{
			ParticipantID: userID,
			CreatedFrom:   from,
			CreatedBefore: before,
			Geo:           geo,
		})
		sparks = digestResult("sparks", rows, err)
	}()
	go func() {
		defer wg.Done()
		rows, _, err := a.content.FindSpots(ctx, models.SpotFilter{
			OwnerID:       userID,
			CreatedFrom:   from,
			CreatedBefore: before,
			Geo:           geo,
			Sort:          models.SpotSortCreatedDesc,
		})
		spots = digestResult("spots", rows, err)
	}()
	go func() {
		defer wg.Done()
		rows, err := a.interactions.FindInteractions(ctx, models.InteractionFilter{
			UserID:        userID,
			Actions:       []string{models.ActionLike, models.ActionComment, models.ActionShare},
			CreatedFrom:   from,
			CreatedBefore: before,
			Geo:           geo,
		})
		interactions = digestResult("interactions", rows, err)
	}()
	wg.Wait()

	for _, fe := range []*FetchError{sparks.Err, spots.Err, interactions.Err} {
		if fe != nil {
			metrics.DigestSourceErrors.WithLabelValues(fe.Source).Inc()
			logging.Ctx(ctx).Warn().Err(fe.Err).Str("source", fe.Source).Str("user_id", userID).Msg("Digest source failed, continuing without it")
		}
	}

	return dayActivity{
		sparks:       sparks.UnwrapOr([]models.SparkRow{}),
		spots:        spots.UnwrapOr([]models.SpotRow{}),
		interactions: interactions.UnwrapOr([]models.InteractionRow{}),
	}
}

func digestResult[T any](source string, rows []T, err error) Result[[]T] {
	if err != nil {
		return Failed[[]T](source, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return Ok(rows)
}

// detectRevisits flags each spot that has an older spot of the same user
// within RevisitRadiusMeters. One proximity query per spot, bounded by
// revisitConcurrency; a failed query counts as "not revisited".
func (a *DailyDigestAggregator) detectRevisits(ctx context.Context, userID string, spots []models.SpotRow, dayStart time.Time) []bool {
	revisited := make([]bool, len(spots))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, a.revisitConcurrency)

	for i := range spots {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			s := spots[idx]
			_, count, err := a.content.FindSpots(ctx, models.SpotFilter{
				OwnerID:       userID,
				CreatedBefore: dayStart,
				Geo: &models.GeoFilter{
					Center:       models.Coordinate{Lat: s.Latitude, Lon: s.Longitude},
					RadiusMeters: config.RevisitRadiusMeters,
				},
				Limit: 1,
			})
			if err != nil {
				metrics.DigestSourceErrors.WithLabelValues("revisits").Inc()
				logging.Ctx(ctx).Warn().Err(err).Str("source", "revisits").Str("spot_id", s.ID).Msg("Revisit check failed")
				return
			}
			revisited[idx] = count > 0
		}(i)
	}

	wg.Wait()
	return revisited
}

func sparkDigestScore() float64 {
	return config.SparkDigestScore
}

func spotDigestScore(s models.SpotRow) float64 {
	return math.Min(1, utils.WeightedEngagement(s.Likes, s.Replies, s.Shares, s.Views)/config.SpotDigestNormalizer)
}

func interactionDigestScore(row models.InteractionRow) float64 {
	return models.GetDigestActionScore(row.Action)
}

func summarize(day dayActivity) models.DigestSummary {
	s := models.DigestSummary{
		TotalConnections: len(day.sparks) + len(day.spots) + len(day.interactions),
		NewSparks:        len(day.sparks),
	}
	for _, r := range day.revisited {
		if r {
			s.RevisitedSpots++
		}
	}
	for _, row := range day.interactions {
		if interactionDigestScore(row) > config.MeaningfulInteractionScore {
			s.MeaningfulInteractions++
		}
	}
	return s
}

// highlights merges sparks, spots and interactions, best first, capped at MaxHighlights
func (a *DailyDigestAggregator) highlights(userID string, day dayActivity) []models.Highlight {
	all := make([]models.Highlight, 0, len(day.sparks)+len(day.spots)+len(day.interactions))
	for _, s := range day.sparks {
		all = append(all, sparkHighlight(userID, s))
	}
	for i, s := range day.spots {
		all = append(all, spotHighlight(s, day.revisited[i]))
	}
	for _, row := range day.interactions {
		all = append(all, interactionHighlight(row))
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})
	if len(all) > config.MaxHighlights {
		all = all[:config.MaxHighlights]
	}
	return all
}

// recommend derives up to one recommendation of each kind from the day
func recommend(userID string, day dayActivity) []models.Recommendation {
	recs := []models.Recommendation{}

	if len(day.spots) > 0 {
		points := make([]utils.Point, len(day.spots))
		for i, s := range day.spots {
			points[i] = utils.Point{Lat: s.Latitude, Lon: s.Longitude}
		}
		clusters := utils.ClusterPoints(points, config.ClusterRadiusMeters)
		recs = append(recs, locationRecommendation(clusters[0]))
	}

	if len(day.sparks) > 0 {
		recs = append(recs, userRecommendation(counterparties(userID, day.sparks)))
	}

	if len(day.interactions) > 0 {
		kind, samples := dominantKind(day.interactions)
		recs = append(recs, contentRecommendation(kind, samples))
	}
	return recs
}

// counterparties lists the distinct spark partners of userID in encounter order
func counterparties(userID string, sparks []models.SparkRow) []string {
	seen := map[string]bool{}
	ids := []string{}
	for _, s := range sparks {
		other := s.Counterparty(userID)
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	return ids
}

// dominantKind returns the most frequent content kind (the first one seen
// wins a tie) and up to MaxSampleContentIDs distinct content IDs of it
func dominantKind(rows []models.InteractionRow) (models.ContentKind, []string) {
	counts := map[models.ContentKind]int{}
	var order []models.ContentKind
	for _, row := range rows {
		if counts[row.ContentKind] == 0 {
			order = append(order, row.ContentKind)
		}
		counts[row.ContentKind]++
	}

	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}

	seen := map[string]bool{}
	samples := []string{}
	for _, row := range rows {
		if row.ContentKind != best || seen[row.ContentID] {
			continue
		}
		seen[row.ContentID] = true
		samples = append(samples, row.ContentID)
		if len(samples) == config.MaxSampleContentIDs {
			break
		}
	}
	return best, samples
}
