package utils

import (
	"math"
)

// =============================================================================
// Relevance Signal Curves
// =============================================================================

// Engagement weights per counter
const (
	EngagementLikeWeight    = 3.0
	EngagementCommentWeight = 5.0
	EngagementShareWeight   = 7.0
	EngagementViewWeight    = 0.1
)

// WeightedEngagement combines raw counters into one engagement volume
func WeightedEngagement(likes, comments, shares, views int) float64 {
	return float64(likes)*EngagementLikeWeight +
		float64(comments)*EngagementCommentWeight +
		float64(shares)*EngagementShareWeight +
		float64(views)*EngagementViewWeight
}

// LogEngagementScore compresses weighted engagement into [0,1]:
// min(1, log10(1 + weighted) / 3). 999 weighted interactions saturate it.
func LogEngagementScore(weighted float64) float64 {
	if weighted <= 0 {
		return 0
	}
	return math.Min(1, math.Log10(1+weighted)/3)
}

// CalculateRecencyFactor calculates an exponential decay factor e^(-hours/decayHours).
// Future timestamps are treated as brand new.
func CalculateRecencyFactor(hoursAgo, decayHours float64) float64 {
	if hoursAgo < 0 {
		hoursAgo = 0
	}
	return math.Exp(-hoursAgo / decayHours)
}

// LinearDistanceDecay scores 1 at the reference point falling linearly to 0 at radius
func LinearDistanceDecay(distanceMeters, radiusMeters float64) float64 {
	if radiusMeters <= 0 {
		return 0
	}
	return math.Max(0, 1-distanceMeters/radiusMeters)
}

// Clamp01 bounds v to [0,1]
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
