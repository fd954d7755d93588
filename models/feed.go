package models

import (
	"time"
)

// ContentKind identifies the type of content behind a feed item
type ContentKind string

const (
	KindSpot  ContentKind = "spot"
	KindSpark ContentKind = "spark"
)

// ContentTypeFilter restricts which kinds a feed query returns
type ContentTypeFilter string

const (
	ContentSpot  ContentTypeFilter = "spot"
	ContentSpark ContentTypeFilter = "spark"
	ContentMixed ContentTypeFilter = "mixed"
)

// SortBy selects how the merged feed is ordered
type SortBy string

const (
	SortRecent   SortBy = "recent"
	SortPopular  SortBy = "popular"
	SortRelevant SortBy = "relevant"
	SortNearby   SortBy = "nearby"
)

// AnonymousUserID is the sentinel used for unauthenticated feed requests
const AnonymousUserID = "anonymous"

// Location is a point with an optional human readable address
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Coordinate is a bare lat/lon pair used for query reference points
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Author is the public identity attached to a feed item
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}

// ItemStats holds engagement counters. Sparks always carry zeros.
type ItemStats struct {
	Views    int `json:"views"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// ViewerInteraction reports what the requesting user already did with an item
type ViewerInteraction struct {
	HasLiked     bool `json:"hasLiked"`
	HasCommented bool `json:"hasCommented"`
	HasShared    bool `json:"hasShared"`
}

// ScoreBreakdown exposes the individual relevance signals of an item.
// Distance and Personalization are nil when the signal did not apply.
type ScoreBreakdown struct {
	Engagement      float64  `json:"engagement"`
	Recency         float64  `json:"recency"`
	Distance        *float64 `json:"distance,omitempty"`
	Personalization *float64 `json:"personalization,omitempty"`
}

// FeedItem is a request-scoped, scored view of a Spot or a Spark.
// RelevanceScore is zero until the scorer assigns it.
type FeedItem struct {
	ID                string            `json:"id"`
	Kind              ContentKind       `json:"kind"`
	Title             string            `json:"title"`
	Content           string            `json:"content,omitempty"`
	Location          Location          `json:"location"`
	Author            Author            `json:"author"`
	CreatedAt         time.Time         `json:"createdAt"`
	Stats             ItemStats         `json:"stats"`
	Tags              []string          `json:"tags"`
	DistanceMeters    *float64          `json:"distanceMeters,omitempty"`
	RelevanceScore    float64           `json:"relevanceScore"`
	ViewerInteraction ViewerInteraction `json:"viewerInteraction"`
	ScoreBreakdown    *ScoreBreakdown   `json:"scoreBreakdown,omitempty"`
}

// GetRelevanceScore implements utils.Scored
func (i FeedItem) GetRelevanceScore() float64 {
	return i.RelevanceScore
}

// FeedQuery is the validated, defaulted input of one feed request
type FeedQuery struct {
	Limit             int
	Offset            int
	ContentType       ContentTypeFilter
	SortBy            SortBy
	ReferenceLocation *Coordinate
	RadiusMeters      float64
	Tags              []string
	HoursAgo          int
	// Debug attaches a ScoreBreakdown to every returned item
	Debug bool
}

// Since returns the lower bound of the candidate time window
func (q FeedQuery) Since(now time.Time) time.Time {
	return now.Add(-time.Duration(q.HoursAgo) * time.Hour)
}

// FeedPage is the result of assembling one feed page.
// Total is the sum of per-kind matches, not a deduplicated count.
type FeedPage struct {
	Items []FeedItem
	Total int
}
