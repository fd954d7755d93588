package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"spark-feed/logging"
	"spark-feed/metrics"
	"spark-feed/models"
	"spark-feed/utils"
)

// FeedAssembler runs planner, retriever and scorer for one feed page
type FeedAssembler struct {
	planner      ContentMixPlanner
	retriever    Retriever
	scorer       *RelevanceScorer
	interactions InteractionStore
}

// NewFeedAssembler creates a feed assembler. interactions may be nil, in
// which case viewer flags stay false.
func NewFeedAssembler(retriever Retriever, scorer *RelevanceScorer, interactions InteractionStore) *FeedAssembler {
	return &FeedAssembler{
		retriever:    retriever,
		scorer:       scorer,
		interactions: interactions,
	}
}

// GenerateFeed assembles one page for userID. A failed content source shrinks
// the feed silently; a failure while scoring or assembling is returned.
//
// Total is the sum of the per-kind match counts, so it can exceed what
// paging through the merged feed would actually yield.
func (a *FeedAssembler) GenerateFeed(ctx context.Context, userID string, query models.FeedQuery, profile *models.PersonalizationProfile) (*models.FeedPage, error) {
	quotas := a.planner.Plan(query, profile)

	// index 0 holds spots, 1 sparks
	var fetched [2]Retrieved
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range []models.ContentKind{models.KindSpot, models.KindSpark} {
		n := quotas.For(kind)
		if n <= 0 {
			continue
		}
		g.Go(func() (err error) {
			defer recoverAsError(&err, string(kind)+" retrieval")
			fetched[i] = a.retriever.Fetch(gctx, query, kind, userID, n).UnwrapOr(Retrieved{})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	spots, sparks := fetched[0], fetched[1]

	merged := make([]models.FeedItem, 0, len(spots.Items)+len(sparks.Items))
	merged = append(merged, spots.Items...)
	merged = append(merged, sparks.Items...)

	if err := a.scoreAll(merged, query, profile); err != nil {
		return nil, err
	}
	if query.SortBy == models.SortRelevant {
		utils.SortByScoreDesc(merged)
	}

	page := utils.Paginate(merged, query.Offset, query.Limit)
	a.applyViewerFlags(ctx, userID, page)

	return &models.FeedPage{
		Items: page,
		Total: spots.TotalMatching + sparks.TotalMatching,
	}, nil
}

func (a *FeedAssembler) scoreAll(items []models.FeedItem, query models.FeedQuery, profile *models.PersonalizationProfile) (err error) {
	defer recoverAsError(&err, "scoring")

	for i := range items {
		item := &items[i]
		score, err := a.scorer.Score(item, query, profile)
		if err != nil {
			return fmt.Errorf("failed to score %s %s: %w", item.Kind, item.ID, err)
		}
		item.RelevanceScore = score
		metrics.RelevanceScore.Observe(score)

		if query.Debug {
			b, err := a.scorer.Breakdown(item, query, profile)
			if err != nil {
				return fmt.Errorf("failed to break down score of %s %s: %w", item.Kind, item.ID, err)
			}
			item.ScoreBreakdown = &b
		}
	}
	return nil
}

// applyViewerFlags marks what the viewer already liked, commented on or
// shared. It runs on the page only and degrades to all-false on error.
func (a *FeedAssembler) applyViewerFlags(ctx context.Context, userID string, page []models.FeedItem) {
	if a.interactions == nil || userID == models.AnonymousUserID || len(page) == 0 {
		return
	}

	ids := make([]string, len(page))
	for i, item := range page {
		ids[i] = item.ID
	}
	actions, err := a.interactions.FindViewerActions(ctx, userID, ids)
	if err != nil {
		metrics.ContentFetchErrors.WithLabelValues("viewer_actions").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("source", "viewer_actions").Str("user_id", userID).Msg("Viewer flags unavailable")
		return
	}
	for i := range page {
		if vi, ok := actions[page[i].ID]; ok {
			page[i].ViewerInteraction = vi
		}
	}
}
