package services

import (
	"math"

	"spark-feed/config"
	"spark-feed/models"
)

// ceilEpsilon absorbs float error so 40*0.6 rounds to 24, not 25
const ceilEpsilon = 1e-9

// Quotas is the number of candidates to fetch per content kind
type Quotas struct {
	Spots  int
	Sparks int
}

// For returns the quota of kind
func (q Quotas) For(kind models.ContentKind) int {
	if kind == models.KindSpark {
		return q.Sparks
	}
	return q.Spots
}

// ContentMixPlanner splits the candidate budget between spots and sparks
type ContentMixPlanner struct{}

// Plan over-fetches CandidateMultiplier times the window the page reads
// from (offset+limit) and splits it by the query's content type. For mixed
// feeds the split follows the profile's type preference, rounding both
// sides up so the quotas never sum to less than the budget.
func (ContentMixPlanner) Plan(query models.FeedQuery, profile *models.PersonalizationProfile) Quotas {
	total := config.CandidateMultiplier * (query.Limit + query.Offset)

	switch query.ContentType {
	case models.ContentSpot:
		return Quotas{Spots: total}
	case models.ContentSpark:
		return Quotas{Sparks: total}
	}

	spotRatio := config.DefaultSpotRatio
	if profile != nil {
		pref := profile.EngagementMetrics.ContentTypePreference
		// a zero preference means the profile never computed one
		if !math.IsNaN(pref.SpotRatio) && pref.SpotRatio+pref.SparkRatio > 0 {
			spotRatio = math.Max(0, math.Min(1, pref.SpotRatio))
		}
	}

	spots := int(math.Ceil(float64(total)*spotRatio - ceilEpsilon))
	sparks := int(math.Ceil(float64(total)*(1-spotRatio) - ceilEpsilon))
	if spots < 0 {
		spots = 0
	}
	if spots+sparks < total {
		sparks = total - spots
	}
	return Quotas{Spots: spots, Sparks: sparks}
}
