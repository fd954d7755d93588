package services

import (
	"fmt"
	"math"
	"time"

	"spark-feed/config"
	"spark-feed/models"
	"spark-feed/utils"
)

// RelevanceScorer computes the [0,1] ranking score of a feed item. It holds
// no mutable state; identical inputs always produce identical scores.
type RelevanceScorer struct {
	now func() time.Time
}

// NewRelevanceScorer creates a scorer; a nil clock means time.Now
func NewRelevanceScorer(clock func() time.Time) *RelevanceScorer {
	if clock == nil {
		clock = time.Now
	}
	return &RelevanceScorer{now: clock}
}

// Score returns the weighted sum of the applicable signals, clamped to [0,1].
// Distance only counts when the item carries a distance, personalization only
// when a profile is present. Missing signals are not renormalized, so an
// anonymous feed without a reference point tops out at 0.55.
func (s *RelevanceScorer) Score(item *models.FeedItem, query models.FeedQuery, profile *models.PersonalizationProfile) (float64, error) {
	b, err := s.Breakdown(item, query, profile)
	if err != nil {
		return 0, err
	}

	score := config.WeightEngagement*b.Engagement + config.WeightRecency*b.Recency
	if b.Distance != nil {
		score += config.WeightDistance * *b.Distance
	}
	if b.Personalization != nil {
		score += config.WeightPersonalization * *b.Personalization
	}
	if math.IsNaN(score) {
		return 0, fmt.Errorf("%w: %s scored NaN", ErrInvalidItem, item.ID)
	}
	return utils.Clamp01(score), nil
}

// Breakdown returns the individual signals behind Score
func (s *RelevanceScorer) Breakdown(item *models.FeedItem, query models.FeedQuery, profile *models.PersonalizationProfile) (models.ScoreBreakdown, error) {
	if err := validateItem(item); err != nil {
		return models.ScoreBreakdown{}, err
	}

	b := models.ScoreBreakdown{
		Engagement: engagementSignal(item.Stats),
		Recency:    utils.CalculateRecencyFactor(s.now().Sub(item.CreatedAt).Hours(), config.RecencyDecayHours),
	}
	if item.DistanceMeters != nil {
		d := utils.LinearDistanceDecay(*item.DistanceMeters, query.RadiusMeters)
		b.Distance = &d
	}
	if profile != nil {
		p := personalizationSignal(item, profile)
		b.Personalization = &p
	}
	return b, nil
}

func validateItem(item *models.FeedItem) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", ErrInvalidItem)
	}
	st := item.Stats
	if st.Views < 0 || st.Likes < 0 || st.Comments < 0 || st.Shares < 0 {
		return fmt.Errorf("%w: %s has negative stats", ErrInvalidItem, item.ID)
	}
	if d := item.DistanceMeters; d != nil && (math.IsNaN(*d) || *d < 0) {
		return fmt.Errorf("%w: %s has invalid distance", ErrInvalidItem, item.ID)
	}
	return nil
}

func engagementSignal(st models.ItemStats) float64 {
	return utils.LogEngagementScore(utils.WeightedEngagement(st.Likes, st.Comments, st.Shares, st.Views))
}

// personalizationSignal blends tag overlap, type preference and how often
// the user's last few interactions were with this kind
func personalizationSignal(item *models.FeedItem, profile *models.PersonalizationProfile) float64 {
	tags := tagOverlap(item.Tags, profile.Interests)
	typePref := profile.EngagementMetrics.ContentTypePreference.RatioFor(item.Kind)
	pattern := patternMatch(item.Kind, profile.RecentInteractions)

	return config.PersonalizationTagShare*tags +
		config.PersonalizationTypeShare*typePref +
		config.PersonalizationPatternShare*pattern
}

// tagOverlap is |tags ∩ interests| / max(|tags|, |interests|) over distinct values
func tagOverlap(tags, interests []string) float64 {
	itemTags := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		itemTags[t] = struct{}{}
	}
	interestSet := make(map[string]struct{}, len(interests))
	for _, i := range interests {
		interestSet[i] = struct{}{}
	}

	denom := len(itemTags)
	if len(interestSet) > denom {
		denom = len(interestSet)
	}
	if denom == 0 {
		return 0
	}

	shared := 0
	for t := range itemTags {
		if _, ok := interestSet[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(denom)
}

func patternMatch(kind models.ContentKind, recent []models.RecentInteraction) float64 {
	if len(recent) > config.PatternWindowLength {
		recent = recent[:config.PatternWindowLength]
	}
	if len(recent) == 0 {
		return 0
	}
	matches := 0
	for _, ri := range recent {
		if ri.ContentKind == kind {
			matches++
		}
	}
	return float64(matches) / float64(len(recent))
}
