package models

import (
	"time"

	"gorm.io/gorm"
)

// SQLite compares timestamps as text, so every stored time is normalized to
// UTC. A zero creation time is set to now.
func utcOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// BeforeSave stores spot times in UTC, defaults a missing expiry to a week
// after creation and a missing status to active
func (s *Spot) BeforeSave(*gorm.DB) error {
	s.CreatedAt = utcOrNow(s.CreatedAt)
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = s.CreatedAt.Add(7 * 24 * time.Hour)
	}
	s.ExpiresAt = s.ExpiresAt.UTC()
	if s.Status == "" {
		s.Status = SpotStatusActive
	}
	return nil
}

// BeforeSave stores the creation time in UTC and defaults the status to pending
func (s *Spark) BeforeSave(*gorm.DB) error {
	s.CreatedAt = utcOrNow(s.CreatedAt)
	if s.Status == "" {
		s.Status = SparkStatusPending
	}
	return nil
}

// BeforeSave stores the creation time in UTC
func (u *User) BeforeSave(*gorm.DB) error {
	u.CreatedAt = utcOrNow(u.CreatedAt)
	return nil
}

// BeforeSave stores the creation time in UTC
func (i *Interaction) BeforeSave(*gorm.DB) error {
	i.CreatedAt = utcOrNow(i.CreatedAt)
	return nil
}

// BeforeSave stores the recording time in UTC
func (l *UserLocation) BeforeSave(*gorm.DB) error {
	l.RecordedAt = utcOrNow(l.RecordedAt)
	return nil
}

// BeforeSave stores the session start in UTC
func (s *UserSession) BeforeSave(*gorm.DB) error {
	s.StartedAt = utcOrNow(s.StartedAt)
	return nil
}
