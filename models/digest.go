package models

import "time"

// Highlight kinds
const (
	HighlightSpark       = "spark"
	HighlightSpot        = "spot"
	HighlightInteraction = "interaction"
)

// Recommendation kinds
const (
	RecommendLocation = "location"
	RecommendUser     = "user"
	RecommendContent  = "content"
)

// DigestSummary holds the day's counters
type DigestSummary struct {
	TotalConnections       int `json:"totalConnections"`
	NewSparks              int `json:"newSparks"`
	RevisitedSpots         int `json:"revisitedSpots"`
	MeaningfulInteractions int `json:"meaningfulInteractions"`
}

// Highlight is one rendered entry of the day's top moments
type Highlight struct {
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Timestamp    time.Time `json:"timestamp"`
	Location     *Location `json:"location,omitempty"`
	Participants []Author  `json:"participants,omitempty"`
	Score        float64   `json:"score"`
}

// DigestInsights are the four rule-based classifications of the day
type DigestInsights struct {
	ConnectionPattern string `json:"connectionPattern"`
	LocationInsight   string `json:"locationInsight"`
	TimePattern       string `json:"timePattern"`
	SocialInsight     string `json:"socialInsight"`
}

// Recommendation is a forward-looking suggestion derived from the day
type Recommendation struct {
	Kind        string                 `json:"kind"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Score       float64                `json:"score"`
	Data        map[string]interface{} `json:"data"`
}

// DigestResult is the "Today's Connection" digest for one user and day
type DigestResult struct {
	Date            string           `json:"date"`
	Summary         DigestSummary    `json:"summary"`
	Highlights      []Highlight      `json:"highlights"`
	Insights        DigestInsights   `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
	Narrative       string           `json:"narrative,omitempty"`
}
