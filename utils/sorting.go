package utils

import (
	"sort"
)

// Scored is an interface for types ranked by a relevance score
type Scored interface {
	GetRelevanceScore() float64
}

// Locatable is an interface for types with a position that can carry a computed distance
type Locatable interface {
	GetLatitude() float64
	GetLongitude() float64
	SetDistance(float64)
	GetDistance() float64
}

// SortByScoreDesc orders items by score, highest first. The sort is stable so
// equal scores keep their incoming order and results are deterministic.
func SortByScoreDesc[T Scored](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].GetRelevanceScore() > items[j].GetRelevanceScore()
	})
}

// =============================================================================
// Distance Filtering
// =============================================================================

// FilterByDistance keeps items within radiusMeters of the reference point
// and sets the distance on each kept item. Returns the filtered slice.
func FilterByDistance[T any, PT interface {
	*T
	Locatable
}](items []T, refLat, refLon, radiusMeters float64) []T {
	filtered := make([]T, 0, len(items))
	for i := range items {
		ptr := PT(&items[i])
		dist := HaversineMeters(refLat, refLon, ptr.GetLatitude(), ptr.GetLongitude())
		if dist <= radiusMeters {
			ptr.SetDistance(dist)
			filtered = append(filtered, items[i])
		}
	}
	return filtered
}

// SortByDistance orders items nearest first using their computed distance
func SortByDistance[T any, PT interface {
	*T
	Locatable
}](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return PT(&items[i]).GetDistance() < PT(&items[j]).GetDistance()
	})
}

// Paginate returns items[offset:offset+limit] clamped to the slice bounds
func Paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) || limit <= 0 {
		return []T{}
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
