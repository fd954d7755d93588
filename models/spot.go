package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Spot statuses
const (
	SpotStatusActive  = "active"
	SpotStatusExpired = "expired"
	SpotStatusHidden  = "hidden"
)

// Spot represents a location-anchored piece of content in the database
type Spot struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index:idx_spot_user" json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Latitude  float64   `gorm:"index:idx_spot_location" json:"latitude"`
	Longitude float64   `gorm:"index:idx_spot_location" json:"longitude"`
	Address   string    `json:"address"`
	Tags      string    `json:"-"` // stored as ",a,b," for LIKE matching
	Status    string    `gorm:"index:idx_spot_status" json:"status"`
	Views     int       `json:"views"`
	Likes     int       `gorm:"index:idx_spot_likes" json:"likes"`
	Replies   int       `json:"replies"`
	Shares    int       `json:"shares"`
	ExpiresAt time.Time `gorm:"index:idx_spot_expires" json:"expires_at"`
	CreatedAt time.Time `gorm:"index:idx_spot_created" json:"created_at"`
}

// TagList returns the spot's tags in stored order
func (s *Spot) TagList() []string {
	return SplitTags(s.Tags)
}

// SetTags stores tags in the delimited column format
func (s *Spot) SetTags(tags []string) {
	s.Tags = JoinTags(tags)
}

// JoinTags encodes tags as ",a,b," so a single tag can be matched as the substring ",a,"
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "," + strings.Join(cleaned, ",") + ","
}

// SplitTags decodes a stored tag column
func SplitTags(stored string) []string {
	tags := []string{}
	for _, t := range strings.Split(stored, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// UnmarshalJSON accepts the seed file format where tags are an array and
// timestamps are RFC3339 strings
func (s *Spot) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string   `json:"id"`
		UserID    string   `json:"user_id"`
		Title     string   `json:"title"`
		Content   string   `json:"content"`
		Latitude  float64  `json:"latitude"`
		Longitude float64  `json:"longitude"`
		Address   string   `json:"address"`
		Tags      []string `json:"tags"`
		Status    string   `json:"status"`
		Views     int      `json:"views"`
		Likes     int      `json:"likes"`
		Replies   int      `json:"replies"`
		Shares    int      `json:"shares"`
		ExpiresAt string   `json:"expires_at"`
		CreatedAt string   `json:"created_at"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	createdAt, err := time.Parse(time.RFC3339, raw.CreatedAt)
	if err != nil {
		return err
	}
	expiresAt := createdAt.Add(7 * 24 * time.Hour)
	if raw.ExpiresAt != "" {
		if expiresAt, err = time.Parse(time.RFC3339, raw.ExpiresAt); err != nil {
			return err
		}
	}

	status := raw.Status
	if status == "" {
		status = SpotStatusActive
	}

	*s = Spot{
		ID:        raw.ID,
		UserID:    raw.UserID,
		Title:     raw.Title,
		Content:   raw.Content,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Address:   raw.Address,
		Status:    status,
		Views:     raw.Views,
		Likes:     raw.Likes,
		Replies:   raw.Replies,
		Shares:    raw.Shares,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}
	s.SetTags(raw.Tags)
	return nil
}
