package models

import (
	"fmt"
	"time"
)

// SpotRow is a spot as returned by the content store, joined with its author.
// DistanceMeters is set only when the query carried a reference point.
type SpotRow struct {
	Spot
	Author         Author
	DistanceMeters *float64
}

// ToFeedItem maps a store row into an unscored feed item
func (r SpotRow) ToFeedItem() FeedItem {
	return FeedItem{
		ID:      r.ID,
		Kind:    KindSpot,
		Title:   r.Title,
		Content: r.Content,
		Location: Location{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Address:   r.Address,
		},
		Author:    r.Author,
		CreatedAt: r.CreatedAt,
		Stats: ItemStats{
			Views:    r.Views,
			Likes:    r.Likes,
			Comments: r.Replies,
			Shares:   r.Shares,
		},
		Tags:           r.TagList(),
		DistanceMeters: r.DistanceMeters,
	}
}

// SparkRow is a spark joined with both participants
type SparkRow struct {
	Spark
	User1          Author
	User2          Author
	DistanceMeters *float64
}

// Other returns the participant that is not viewerID
func (r SparkRow) Other(viewerID string) Author {
	if r.User1ID == viewerID {
		return r.User2
	}
	return r.User1
}

// ToFeedItem maps a store row into an unscored feed item as seen by viewerID.
// The author of a spark is the counterparty; sparks carry no tags or stats.
func (r SparkRow) ToFeedItem(viewerID string) FeedItem {
	other := r.Other(viewerID)
	return FeedItem{
		ID:      r.ID,
		Kind:    KindSpark,
		Title:   fmt.Sprintf("Spark with %s", other.DisplayName),
		Content: r.Message,
		Location: Location{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Address:   r.Address,
		},
		Author:         other,
		CreatedAt:      r.CreatedAt,
		Tags:           []string{},
		DistanceMeters: r.DistanceMeters,
	}
}

// InteractionRow is an interaction as returned by the interaction store
type InteractionRow struct {
	ID          uint
	UserID      string
	ContentID   string
	ContentKind ContentKind
	Action      string
	Latitude    float64
	Longitude   float64
	CreatedAt   time.Time
}

// ToRecentInteraction converts a row into the profile history shape
func (r InteractionRow) ToRecentInteraction() RecentInteraction {
	return RecentInteraction{
		ContentID:   r.ContentID,
		ContentKind: r.ContentKind,
		Action:      r.Action,
		Timestamp:   r.CreatedAt,
	}
}

// EngagementAggregates is the raw engagement summary of a user over a window
type EngagementAggregates struct {
	AvgSessionMinutes float64
	ContentTypeCounts map[ContentKind]int
	HourOfDayCounts   map[int]int
}
