package models

import (
	"time"
)

// Interaction represents a user's engagement with a spot or spark
type Interaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index:idx_interaction_user" json:"user_id"`
	ContentID   string    `gorm:"index:idx_interaction_content" json:"content_id"`
	ContentKind string    `json:"content_kind"`
	Action      string    `gorm:"index:idx_interaction_action" json:"action"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CreatedAt   time.Time `gorm:"index:idx_interaction_created" json:"created_at"`
}

// UserLocation is one recorded position of a user
type UserLocation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"index:idx_location_user" json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `gorm:"index:idx_location_recorded" json:"recorded_at"`
}

// UserSession is one app session, used for engagement aggregates
type UserSession struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"index:idx_session_user" json:"user_id"`
	StartedAt       time.Time `gorm:"index:idx_session_started" json:"started_at"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// GetActionWeight returns the weight of an action when ranking a user's tag preferences
func GetActionWeight(action string) float64 {
	switch action {
	case ActionLike:
		return 1.0
	case ActionComment:
		return 2.0
	case ActionShare:
		return 3.0
	default:
		return 0
	}
}

// GetDigestActionScore returns how meaningful an action is for the daily digest
func GetDigestActionScore(action string) float64 {
	switch action {
	case ActionLike:
		return 0.3
	case ActionComment:
		return 0.6
	case ActionShare:
		return 0.9
	default:
		return 0.1
	}
}
