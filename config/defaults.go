package config

import "time"

// Feed query bounds and defaults. Handlers apply these when building a
// FeedQuery; services never re-derive them.
const (
	DefaultFeedLimit    = 20
	MinFeedLimit        = 1
	MaxFeedLimit        = 50
	DefaultRadiusMeters = 5000.0
	MinRadiusMeters     = 100.0
	MaxRadiusMeters     = 50000.0
	DefaultHoursAgo     = 24
	MinHoursAgo         = 1
	MaxHoursAgo         = 168

	// CandidateMultiplier is the over-fetch factor applied before scoring
	CandidateMultiplier = 2
)

// Relevance weights and curve constants
const (
	WeightEngagement      = 0.30
	WeightRecency         = 0.25
	WeightDistance        = 0.20
	WeightPersonalization = 0.25

	PersonalizationTagShare     = 0.4
	PersonalizationTypeShare    = 0.3
	PersonalizationPatternShare = 0.3

	RecencyDecayHours   = 24.0
	PatternWindowLength = 10
)

// Default content-type preference when a user has no history
const (
	DefaultSpotRatio  = 0.6
	DefaultSparkRatio = 0.4
)

// Personalization profile bounds
const (
	MaxRecentInteractions = 50
	MaxLocationHistory    = 100
	MaxPreferredTags      = 10
	PreferredTagWindow    = 60 * 24 * time.Hour
	EngagementWindow      = 30 * 24 * time.Hour
)

// Daily digest constants
const (
	DefaultDigestRadiusMeters    = 10000.0
	RevisitRadiusMeters          = 500.0
	ClusterRadiusMeters          = 500.0
	MaxHighlights                = 10
	LocationRecommendationRadius = 2000.0
	MeaningfulInteractionScore   = 0.7
	SparkDigestScore             = 0.9
	SpotDigestNormalizer         = 100.0
	MaxSampleContentIDs          = 3
	DigestDateLayout             = "2006-01-02"
)

// Algorithm names reported in feed metadata; purely descriptive
const (
	AlgorithmRelevance = "relevance_v1"
	AlgorithmTrending  = "trending_v1"
	AlgorithmLocation  = "location_v1"
)
