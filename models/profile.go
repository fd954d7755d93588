package models

import "time"

// Interaction actions
const (
	ActionView    = "view"
	ActionLike    = "like"
	ActionComment = "comment"
	ActionShare   = "share"
)

// IsValidAction reports whether action is one of the known interaction actions
func IsValidAction(action string) bool {
	switch action {
	case ActionView, ActionLike, ActionComment, ActionShare:
		return true
	}
	return false
}

// RecentInteraction is one entry of a profile's engagement history
type RecentInteraction struct {
	ContentID   string      `json:"contentId"`
	ContentKind ContentKind `json:"contentKind"`
	Action      string      `json:"action"`
	Timestamp   time.Time   `json:"timestamp"`
}

// LocationPoint is one entry of a user's location history
type LocationPoint struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
}

// ContentTypePreference splits a user's attention between kinds; the ratios sum to 1
type ContentTypePreference struct {
	SpotRatio  float64 `json:"spotRatio"`
	SparkRatio float64 `json:"sparkRatio"`
}

// RatioFor returns the preference ratio for a content kind
func (p ContentTypePreference) RatioFor(kind ContentKind) float64 {
	if kind == KindSpark {
		return p.SparkRatio
	}
	return p.SpotRatio
}

// EngagementMetrics aggregates how a user engages with the app
type EngagementMetrics struct {
	AvgSessionMinutes     float64               `json:"avgSessionMinutes"`
	ContentTypePreference ContentTypePreference `json:"contentTypePreference"`
	HourOfDayActivity     map[int]int           `json:"hourOfDayActivity"`
}

// PersonalizationProfile is rebuilt per request from interaction history
type PersonalizationProfile struct {
	UserID             string              `json:"userId"`
	Interests          []string            `json:"interests"`
	RecentInteractions []RecentInteraction `json:"recentInteractions"`
	LocationHistory    []LocationPoint     `json:"locationHistory"`
	PreferredTags      []string            `json:"preferredTags"`
	EngagementMetrics  EngagementMetrics   `json:"engagementMetrics"`
}
