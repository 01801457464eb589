package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbuddy/engine/internal/ports/outbound"
)

// ProfileRepository reads stored profile locations
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) outbound.ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindLocation returns the stored location; users without a profile have none
func (r *ProfileRepository) FindLocation(ctx context.Context, userID uuid.UUID) (string, error) {
	var model ProfileModel

	result := r.db.WithContext(ctx).
		Select("location").
		First(&model, "user_id = ?", userID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}

	return model.Location, nil
}
