package database

import (
	"context"
	"errors"
	"fmt"

	"spark-feed/models"

	"gorm.io/gorm"
)

// UserDirectory resolves users from SQLite
type UserDirectory struct {
	db *gorm.DB
}

// NewUserDirectory creates a user directory
func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// FindUser returns ErrNotFound for unknown IDs
func (d *UserDirectory) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return &user, nil
}

// FindUsers returns the known users among ids, keyed by ID
func (d *UserDirectory) FindUsers(ctx context.Context, ids []string) (map[string]models.User, error) {
	found := make(map[string]models.User, len(ids))
	unique := dedupe(ids)
	if len(unique) == 0 {
		return found, nil
	}

	var users []models.User
	if err := d.db.WithContext(ctx).Where("id IN ?", unique).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	for _, u := range users {
		found[u.ID] = u
	}
	return found, nil
}

// authors resolves ids to public authors; unknown IDs get a placeholder
func (d *UserDirectory) authors(ctx context.Context, ids []string) (map[string]models.Author, error) {
	users, err := d.FindUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Author, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out[id] = u.ToAuthor()
		} else {
			out[id] = models.UnknownAuthor(id)
		}
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
