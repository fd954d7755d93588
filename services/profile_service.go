package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"spark-feed/config"
	"spark-feed/database"
	"spark-feed/logging"
	"spark-feed/models"
)

// ProfileBuilder assembles a PersonalizationProfile from the stores. The
// profile is request scoped and never cached.
type ProfileBuilder struct {
	content      ContentStore
	interactions InteractionStore
	users        UserDirectory
	now          func() time.Time
}

// NewProfileBuilder creates a profile builder; a nil clock means time.Now
func NewProfileBuilder(content ContentStore, interactions InteractionStore, users UserDirectory, clock func() time.Time) *ProfileBuilder {
	if clock == nil {
		clock = time.Now
	}
	return &ProfileBuilder{
		content:      content,
		interactions: interactions,
		users:        users,
		now:          clock,
	}
}

// Build loads the user's history concurrently. A failing source leaves its
// part of the profile at the default; only cancellation fails the build.
func (b *ProfileBuilder) Build(ctx context.Context, userID string) (*models.PersonalizationProfile, error) {
	now := b.now()

	var (
		declared  []string
		recent    []models.InteractionRow
		weighted  []models.InteractionRow
		locations []models.LocationPoint
		agg       *models.EngagementAggregates
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := b.users.FindUser(gctx, userID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil
			}
			return degrade(gctx, "users", userID, err)
		}
		declared = user.InterestList()
		return nil
	})

	g.Go(func() error {
		rows, err := b.interactions.FindInteractions(gctx, models.InteractionFilter{
			UserID: userID,
			Limit:  config.MaxRecentInteractions,
		})
		if err != nil {
			return degrade(gctx, "recent_interactions", userID, err)
		}
		recent = rows
		return nil
	})

	g.Go(func() error {
		rows, err := b.interactions.FindInteractions(gctx, models.InteractionFilter{
			UserID:      userID,
			Actions:     []string{models.ActionLike, models.ActionComment, models.ActionShare},
			CreatedFrom: now.Add(-config.PreferredTagWindow),
		})
		if err != nil {
			return degrade(gctx, "tag_interactions", userID, err)
		}
		weighted = rows
		return nil
	})

	g.Go(func() error {
		points, err := b.interactions.FindLocationHistory(gctx, userID, config.MaxLocationHistory)
		if err != nil {
			return degrade(gctx, "location_history", userID, err)
		}
		locations = points
		return nil
	})

	g.Go(func() error {
		a, err := b.interactions.FindEngagementAggregates(gctx, userID, now.Add(-config.EngagementWindow))
		if err != nil {
			return degrade(gctx, "engagement", userID, err)
		}
		agg = a
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(recent) > config.MaxRecentInteractions {
		recent = recent[:config.MaxRecentInteractions]
	}
	spotTags := b.loadSpotTags(ctx, userID, recent, weighted)

	recentInteractions := make([]models.RecentInteraction, 0, len(recent))
	for _, row := range recent {
		recentInteractions = append(recentInteractions, row.ToRecentInteraction())
	}
	if len(locations) > config.MaxLocationHistory {
		locations = locations[:config.MaxLocationHistory]
	}
	if locations == nil {
		locations = []models.LocationPoint{}
	}

	return &models.PersonalizationProfile{
		UserID:             userID,
		Interests:          mergeInterests(declared, recent, spotTags),
		RecentInteractions: recentInteractions,
		LocationHistory:    locations,
		PreferredTags:      preferredTags(weighted, spotTags, config.MaxPreferredTags),
		EngagementMetrics:  engagementMetrics(agg),
	}, nil
}

// loadSpotTags resolves the tags of every spot referenced by the interactions
func (b *ProfileBuilder) loadSpotTags(ctx context.Context, userID string, sets ...[]models.InteractionRow) map[string][]string {
	seen := map[string]bool{}
	var ids []string
	for _, rows := range sets {
		for _, row := range rows {
			if row.ContentKind == models.KindSpot && !seen[row.ContentID] {
				seen[row.ContentID] = true
				ids = append(ids, row.ContentID)
			}
		}
	}
	tags := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return tags
	}

	spots, err := b.content.FindSpotsByIDs(ctx, ids)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("source", "spot_tags").Str("user_id", userID).Msg("Profile source failed, using defaults")
		return tags
	}
	for _, s := range spots {
		tags[s.ID] = s.TagList()
	}
	return tags
}

// degrade logs a failed profile source. It returns an error only when the
// request itself was cancelled.
func degrade(ctx context.Context, source, userID string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logging.Ctx(ctx).Warn().Err(err).Str("source", source).Str("user_id", userID).Msg("Profile source failed, using defaults")
	return nil
}

// mergeInterests is the ordered, deduplicated union of declared interests and
// the tags of recently interacted spots
func mergeInterests(declared []string, recent []models.InteractionRow, spotTags map[string][]string) []string {
	seen := map[string]bool{}
	interests := []string{}
	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			interests = append(interests, tag)
		}
	}
	for _, d := range declared {
		add(d)
	}
	for _, row := range recent {
		if row.ContentKind != models.KindSpot {
			continue
		}
		for _, t := range spotTags[row.ContentID] {
			add(t)
		}
	}
	return interests
}

// preferredTags ranks tags by action-weighted frequency, ties alphabetically
func preferredTags(rows []models.InteractionRow, spotTags map[string][]string, limit int) []string {
	weights := map[string]float64{}
	for _, row := range rows {
		w := models.GetActionWeight(row.Action)
		if w == 0 {
			continue
		}
		for _, t := range spotTags[row.ContentID] {
			weights[t] += w
		}
	}

	tags := make([]string, 0, len(weights))
	for t := range weights {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if weights[tags[i]] != weights[tags[j]] {
			return weights[tags[i]] > weights[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

// engagementMetrics normalizes raw aggregates; nil yields the defaults
func engagementMetrics(agg *models.EngagementAggregates) models.EngagementMetrics {
	m := models.EngagementMetrics{
		ContentTypePreference: models.ContentTypePreference{
			SpotRatio:  config.DefaultSpotRatio,
			SparkRatio: config.DefaultSparkRatio,
		},
		HourOfDayActivity: make(map[int]int, 24),
	}
	for h := 0; h < 24; h++ {
		m.HourOfDayActivity[h] = 0
	}
	if agg == nil {
		return m
	}

	m.AvgSessionMinutes = agg.AvgSessionMinutes
	spots := agg.ContentTypeCounts[models.KindSpot]
	sparks := agg.ContentTypeCounts[models.KindSpark]
	if total := spots + sparks; total > 0 {
		spotRatio := float64(spots) / float64(total)
		m.ContentTypePreference = models.ContentTypePreference{
			SpotRatio:  spotRatio,
			SparkRatio: 1 - spotRatio,
		}
	}
	for h, n := range agg.HourOfDayCounts {
		if h >= 0 && h < 24 {
			m.HourOfDayActivity[h] = n
		}
	}
	return m
}
