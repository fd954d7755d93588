package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"spark-feed/config"
	"spark-feed/logging"
	"spark-feed/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a looked-up record does not exist
var ErrNotFound = errors.New("record not found")

// InitDB opens the SQLite database and migrates all schemas
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logMode := logger.Silent
	if cfg.LogQueries {
		logMode = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// every connection to an in-memory database is a separate database
	if strings.Contains(cfg.Path, ":memory:") || strings.Contains(cfg.Path, "mode=memory") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Spot{},
		&models.Spark{},
		&models.Interaction{},
		&models.UserLocation{},
		&models.UserSession{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("Database initialized")
	return db, nil
}

// SeedData is the layout of the seed file
type SeedData struct {
	Users  []models.User  `json:"users"`
	Spots  []models.Spot  `json:"spots"`
	Sparks []models.Spark `json:"sparks"`
}

// LoadSeedData loads users, spots and sparks from a JSON file into an empty database
func LoadSeedData(db *gorm.DB, filePath string) error {
	var count int64
	if err := db.Model(&models.Spot{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count spots: %w", err)
	}
	if count > 0 {
		logging.Info().Int64("spots", count).Msg("Database already seeded, skipping data load")
		return nil
	}

	logging.Info().Str("file", filePath).Msg("Loading seed data")

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	// Spot and User carry custom UnmarshalJSON for the seed format
	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if len(data.Users) > 0 {
			if err := tx.CreateInBatches(&data.Users, 100).Error; err != nil {
				return fmt.Errorf("failed to insert users: %w", err)
			}
		}
		if len(data.Spots) > 0 {
			if err := tx.CreateInBatches(&data.Spots, 100).Error; err != nil {
				return fmt.Errorf("failed to insert spots: %w", err)
			}
		}
		if len(data.Sparks) > 0 {
			if err := tx.CreateInBatches(&data.Sparks, 100).Error; err != nil {
				return fmt.Errorf("failed to insert sparks: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Info().
		Int("users", len(data.Users)).
		Int("spots", len(data.Spots)).
		Int("sparks", len(data.Sparks)).
		Msg("Seed data loaded")
	return nil
}

// SeedInteractions generates sample interactions, locations and sessions so
// personalization and the daily digest have something to work with
func SeedInteractions(db *gorm.DB, now time.Time) error {
	var count int64
	if err := db.Model(&models.Interaction{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count interactions: %w", err)
	}
	if count > 0 {
		logging.Info().Int64("interactions", count).Msg("Interactions already seeded, skipping")
		return nil
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	var spots []models.Spot
	if err := db.Order("created_at DESC").Limit(50).Find(&spots).Error; err != nil {
		return fmt.Errorf("failed to load spots: %w", err)
	}
	if len(users) == 0 || len(spots) == 0 {
		return fmt.Errorf("no users or spots found to create interactions")
	}

	actions := []string{models.ActionView, models.ActionLike, models.ActionView, models.ActionComment, models.ActionView, models.ActionShare}

	var (
		interactions []models.Interaction
		locations    []models.UserLocation
		sessions     []models.UserSession
	)
	for u, user := range users {
		for j := 0; j < 20; j++ {
			spot := spots[(u*7+j)%len(spots)]
			// spread over the last two days
			hoursAgo := float64((u+j)%48) + float64(j%10)/10.0
			at := now.Add(-time.Duration(hoursAgo * float64(time.Hour)))

			interactions = append(interactions, models.Interaction{
				UserID:      user.ID,
				ContentID:   spot.ID,
				ContentKind: string(models.KindSpot),
				Action:      actions[j%len(actions)],
				Latitude:    spot.Latitude,
				Longitude:   spot.Longitude,
				CreatedAt:   at,
			})

			if j%4 == 0 {
				locations = append(locations, models.UserLocation{
					UserID:     user.ID,
					Latitude:   spot.Latitude + (float64(j%5)-2)*0.001,
					Longitude:  spot.Longitude + (float64(j%5)-2)*0.001,
					RecordedAt: at,
				})
				sessions = append(sessions, models.UserSession{
					UserID:          user.ID,
					StartedAt:       at,
					DurationMinutes: float64(5 + (u+j)%25),
				})
			}
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&interactions, 500).Error; err != nil {
			return fmt.Errorf("failed to insert interactions: %w", err)
		}
		if err := tx.CreateInBatches(&locations, 500).Error; err != nil {
			return fmt.Errorf("failed to insert locations: %w", err)
		}
		if err := tx.CreateInBatches(&sessions, 500).Error; err != nil {
			return fmt.Errorf("failed to insert sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Info().
		Int("interactions", len(interactions)).
		Int("locations", len(locations)).
		Int("sessions", len(sessions)).
		Msg("Seeded sample engagement")
	return nil
}
