package models

import "time"

// Spark statuses
const (
	SparkStatusPending  = "pending"
	SparkStatusAccepted = "accepted"
	SparkStatusDeclined = "declined"
)

// Spark is a system-detected connection between exactly two users
type Spark struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	User1ID   string    `gorm:"index:idx_spark_user1" json:"user1_id"`
	User2ID   string    `gorm:"index:idx_spark_user2" json:"user2_id"`
	Message   string    `json:"message"`
	Latitude  float64   `gorm:"index:idx_spark_location" json:"latitude"`
	Longitude float64   `gorm:"index:idx_spark_location" json:"longitude"`
	Address   string    `json:"address"`
	Status    string    `gorm:"index:idx_spark_status" json:"status"`
	CreatedAt time.Time `gorm:"index:idx_spark_created" json:"created_at"`
}

// Counterparty returns the participant that is not userID
func (s *Spark) Counterparty(userID string) string {
	if s.User1ID == userID {
		return s.User2ID
	}
	return s.User1ID
}
