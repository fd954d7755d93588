package models

import (
	"encoding/json"
	"time"
)

// User is the directory entry for an author or spark participant
type User struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Interests   string    `json:"-"` // same delimited format as Spot.Tags
	CreatedAt   time.Time `json:"created_at"`
}

// InterestList returns the user's declared interests
func (u *User) InterestList() []string {
	return SplitTags(u.Interests)
}

// ToAuthor converts a directory entry into the public author shape
func (u *User) ToAuthor() Author {
	return Author{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Avatar:      u.AvatarURL,
	}
}

// UnknownAuthor is used when the directory has no entry for id
func UnknownAuthor(id string) Author {
	return Author{ID: id, DisplayName: "Someone"}
}

// UnmarshalJSON accepts interests as a JSON array in seed files
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string    `json:"id"`
		DisplayName string    `json:"display_name"`
		AvatarURL   string    `json:"avatar_url"`
		Interests   []string  `json:"interests"`
		CreatedAt   time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User{
		ID:          raw.ID,
		DisplayName: raw.DisplayName,
		AvatarURL:   raw.AvatarURL,
		Interests:   JoinTags(raw.Interests),
		CreatedAt:   raw.CreatedAt,
	}
	return nil
}
