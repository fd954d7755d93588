package services

import (
	"fmt"
	"strings"
	"time"

	"spark-feed/config"
	"spark-feed/models"
	"spark-feed/utils"
)

// =============================================================================
// Insights
// =============================================================================

func buildInsights(userID string, day dayActivity, loc *time.Location) models.DigestInsights {
	total := len(day.sparks) + len(day.spots) + len(day.interactions)
	return models.DigestInsights{
		ConnectionPattern: connectionPattern(total, len(day.sparks)),
		LocationInsight:   locationInsight(distinctLocations(day)),
		TimePattern:       timePattern(activityTimes(day), loc),
		SocialInsight:     socialInsight(len(counterparties(userID, day.sparks)), len(day.sparks)),
	}
}

func connectionPattern(totalConnections, newSparks int) string {
	switch {
	case totalConnections > 10:
		return "You had a highly active day with lots of connections!"
	case totalConnections > 5:
		return "You maintained a good balance of connections today."
	case newSparks > 2:
		return "You focused on making new spark connections today."
	default:
		return "A quiet day - perfect for reflection."
	}
}

// distinctLocations counts spark and spot coordinates on a ~111 m grid
func distinctLocations(day dayActivity) int {
	cells := map[string]struct{}{}
	for _, s := range day.sparks {
		cells[utils.GridKey(s.Latitude, s.Longitude)] = struct{}{}
	}
	for _, s := range day.spots {
		cells[utils.GridKey(s.Latitude, s.Longitude)] = struct{}{}
	}
	return len(cells)
}

func locationInsight(distinct int) string {
	switch {
	case distinct > 5:
		return "You explored many different locations today!"
	case distinct > 3:
		return "You visited a good variety of places."
	default:
		return "You stayed in familiar areas today."
	}
}

func activityTimes(day dayActivity) []time.Time {
	times := make([]time.Time, 0, len(day.sparks)+len(day.spots)+len(day.interactions))
	for _, s := range day.sparks {
		times = append(times, s.CreatedAt)
	}
	for _, s := range day.spots {
		times = append(times, s.CreatedAt)
	}
	for _, row := range day.interactions {
		times = append(times, row.CreatedAt)
	}
	return times
}

// timePattern names the period of the busiest hour when that hour holds more
// than 30% of the day's activity
func timePattern(times []time.Time, loc *time.Location) string {
	var hours [24]int
	for _, t := range times {
		hours[t.In(loc).Hour()]++
	}

	busiest := 0
	for h := 1; h < 24; h++ {
		if hours[h] > hours[busiest] {
			busiest = h
		}
	}

	if len(times) == 0 || float64(hours[busiest]) <= 0.3*float64(len(times)) {
		return "Your activity was spread throughout the day."
	}

	period := "evening"
	switch {
	case busiest < 12:
		period = "morning"
	case busiest < 17:
		period = "afternoon"
	}
	return fmt.Sprintf("You were most active in the %s.", period)
}

func socialInsight(distinctPartners, sparkCount int) string {
	switch {
	case distinctPartners > 3:
		return "You connected with many different people today!"
	case distinctPartners > 1:
		return "You had meaningful one-on-one connections."
	case sparkCount == 1:
		return "You made a special connection today."
	default:
		return "Today was about personal content creation."
	}
}

// =============================================================================
// Highlight templates
// =============================================================================

func sparkHighlight(userID string, s models.SparkRow) models.Highlight {
	other := s.Other(userID)
	return models.Highlight{
		Kind:         models.HighlightSpark,
		Title:        "New Spark Connection",
		Description:  fmt.Sprintf("You connected with %s through a spark", other.DisplayName),
		Timestamp:    s.CreatedAt,
		Location:     &models.Location{Latitude: s.Latitude, Longitude: s.Longitude, Address: s.Address},
		Participants: []models.Author{other},
		Score:        sparkDigestScore(),
	}
}

func spotHighlight(s models.SpotRow, revisited bool) models.Highlight {
	h := models.Highlight{
		Kind:      models.HighlightSpot,
		Title:     "Spot Created",
		Timestamp: s.CreatedAt,
		Location:  &models.Location{Latitude: s.Latitude, Longitude: s.Longitude, Address: s.Address},
		Score:     spotDigestScore(s),
	}
	if revisited {
		h.Title = "Back at a Familiar Spot"
		h.Description = fmt.Sprintf("You returned to a place you've shared before with %q", s.Title)
	} else {
		h.Description = fmt.Sprintf("You shared %q (%d likes, %d replies)", s.Title, s.Likes, s.Replies)
	}
	return h
}

func interactionHighlight(row models.InteractionRow) models.Highlight {
	var title, verb string
	switch row.Action {
	case models.ActionLike:
		title, verb = "Showed Some Love", "liked"
	case models.ActionComment:
		title, verb = "Joined the Conversation", "commented on"
	case models.ActionShare:
		title, verb = "Spread the Word", "shared"
	default:
		title, verb = "Engaged With Content", "engaged with"
	}

	h := models.Highlight{
		Kind:        models.HighlightInteraction,
		Title:       title,
		Description: fmt.Sprintf("You %s a %s", verb, row.ContentKind),
		Timestamp:   row.CreatedAt,
		Score:       interactionDigestScore(row),
	}
	if row.Latitude != 0 || row.Longitude != 0 {
		h.Location = &models.Location{Latitude: row.Latitude, Longitude: row.Longitude}
	}
	return h
}

// =============================================================================
// Recommendation templates
// =============================================================================

func locationRecommendation(c utils.Cluster) models.Recommendation {
	return models.Recommendation{
		Kind:        models.RecommendLocation,
		Title:       "Explore Your Favorite Area",
		Description: fmt.Sprintf("You created %d spots around here today. See what others are sharing within 2 km.", c.Size()),
		Score:       0.8,
		Data: map[string]interface{}{
			"latitude":     c.Centroid.Lat,
			"longitude":    c.Centroid.Lon,
			"radiusMeters": config.LocationRecommendationRadius,
			"spotCount":    c.Size(),
		},
	}
}

func userRecommendation(exclude []string) models.Recommendation {
	return models.Recommendation{
		Kind:        models.RecommendUser,
		Title:       "Meet Similar People",
		Description: "People with interests like yours were nearby today. Keep the sparks coming.",
		Score:       0.7,
		Data: map[string]interface{}{
			"excludeUserIds": exclude,
		},
	}
}

func contentRecommendation(kind models.ContentKind, samples []string) models.Recommendation {
	noun := "Content"
	if kind != "" {
		noun = strings.ToUpper(string(kind[:1])) + string(kind[1:]) + "s"
	}
	return models.Recommendation{
		Kind:        models.RecommendContent,
		Title:       fmt.Sprintf("More %s For You", noun),
		Description: fmt.Sprintf("You engaged most with %s today. Here is more of what you enjoyed.", strings.ToLower(noun)),
		Score:       0.6,
		Data: map[string]interface{}{
			"contentKind":      string(kind),
			"sampleContentIds": samples,
		},
	}
}
