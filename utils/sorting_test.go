package utils

import (
	"testing"
)

// mockPlace implements Scored and Locatable for testing
type mockPlace struct {
	id       string
	score    float64
	distance float64
	lat      float64
	lon      float64
}

func (m mockPlace) GetRelevanceScore() float64 { return m.score }
func (m mockPlace) GetLatitude() float64       { return m.lat }
func (m mockPlace) GetLongitude() float64      { return m.lon }
func (m mockPlace) GetDistance() float64       { return m.distance }
func (m *mockPlace) SetDistance(d float64)     { m.distance = d }

func TestSortByScoreDesc(t *testing.T) {
	places := []mockPlace{
		{id: "low", score: 0.3},
		{id: "high", score: 0.9},
		{id: "mid", score: 0.6},
	}

	SortByScoreDesc(places)

	if places[0].id != "high" || places[1].id != "mid" || places[2].id != "low" {
		t.Errorf("SortByScoreDesc failed: got order %s, %s, %s", places[0].id, places[1].id, places[2].id)
	}
}

func TestSortByScoreDesc_StableOnTies(t *testing.T) {
	places := []mockPlace{
		{id: "a", score: 0.5},
		{id: "b", score: 0.7},
		{id: "c", score: 0.5},
		{id: "d", score: 0.5},
	}

	SortByScoreDesc(places)

	got := []string{places[0].id, places[1].id, places[2].id, places[3].id}
	want := []string{"b", "a", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected stable order %v, got %v", want, got)
		}
	}
}

func TestFilterByDistance(t *testing.T) {
	refLat, refLon := 37.7749, -122.4194 // San Francisco

	places := []mockPlace{
		{id: "Oakland", lat: 37.8044, lon: -122.2712},  // ~13 km
		{id: "LA", lat: 34.0522, lon: -118.2437},       // ~559 km
		{id: "Palo Alto", lat: 37.4419, lon: -122.143}, // ~44 km
	}

	filtered := FilterByDistance[mockPlace](places, refLat, refLon, 50000)

	if len(filtered) != 2 {
		t.Fatalf("Expected 2 places within 50km, got %d", len(filtered))
	}

	ids := map[string]bool{}
	for _, p := range filtered {
		ids[p.id] = true
		if p.distance == 0 {
			t.Errorf("distance not set on %s", p.id)
		}
	}
	if !ids["Oakland"] || !ids["Palo Alto"] {
		t.Error("Expected Oakland and Palo Alto in filtered results")
	}
	if ids["LA"] {
		t.Error("LA should not be in filtered results")
	}
}

func TestSortByDistance(t *testing.T) {
	places := []mockPlace{
		{id: "far", distance: 900},
		{id: "near", distance: 10},
		{id: "mid", distance: 400},
	}

	SortByDistance[mockPlace](places)

	if places[0].id != "near" || places[1].id != "mid" || places[2].id != "far" {
		t.Errorf("SortByDistance failed: got order %s, %s, %s", places[0].id, places[1].id, places[2].id)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []int
	}{
		{"First page", 0, 2, []int{0, 1}},
		{"Middle page", 2, 2, []int{2, 3}},
		{"Partial last page", 4, 2, []int{4}},
		{"Offset at end", 5, 2, []int{}},
		{"Offset past end", 9, 2, []int{}},
		{"Limit larger than slice", 0, 50, []int{0, 1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(items, tt.offset, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("Paginate(%d, %d) = %v, want %v", tt.offset, tt.limit, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Paginate(%d, %d) = %v, want %v", tt.offset, tt.limit, got, tt.want)
				}
			}
		})
	}
}
