package models

import "time"

// GeoFilter restricts results to a radius around a center point
type GeoFilter struct {
	Center       Coordinate
	RadiusMeters float64
}

// SpotSort is the ordering hint passed to the content store
type SpotSort string

const (
	SpotSortCreatedDesc SpotSort = "created_desc"
	SpotSortLikesDesc   SpotSort = "likes_desc"
	SpotSortDistanceAsc SpotSort = "distance_asc"
)

// SpotFilter describes a spot query. Zero values mean "no predicate".
type SpotFilter struct {
	Statuses       []string
	OwnerID        string
	ExcludeOwnerID string
	CreatedFrom    time.Time // inclusive
	CreatedBefore  time.Time // exclusive
	Geo            *GeoFilter
	AnyTags        []string
	Sort           SpotSort
	Limit          int
	Offset         int
}

// SparkFilter describes a spark query. Results are always newest first.
type SparkFilter struct {
	Statuses      []string
	ParticipantID string
	CreatedFrom   time.Time // inclusive
	CreatedBefore time.Time // exclusive
	Geo           *GeoFilter
	Limit         int
	Offset        int
}

// InteractionFilter describes an interaction query. Results are newest first.
type InteractionFilter struct {
	UserID        string
	Actions       []string
	CreatedFrom   time.Time // inclusive
	CreatedBefore time.Time // exclusive
	Geo           *GeoFilter
	Limit         int
}
