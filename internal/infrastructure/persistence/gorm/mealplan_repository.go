package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/ports/outbound"
)

// MealPlanRepository implements the meal plan repository interface using GORM
type MealPlanRepository struct {
	db *gorm.DB
}

// NewMealPlanRepository creates a new meal plan repository
func NewMealPlanRepository(db *gorm.DB) outbound.MealPlanRepository {
	return &MealPlanRepository{db: db}
}

// Save writes the plan row and its meals in one transaction. Rows that
// already exist are left untouched, so saving the same plan twice is a no-op.
func (r *MealPlanRepository) Save(ctx context.Context, plan *mealplan.MealPlan) error {
	model, meals := MealPlanToModel(plan)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(model)
		if result.Error != nil {
			return fmt.Errorf("insert meal plan: %w", result.Error)
		}

		result = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&meals)
		if result.Error != nil {
			return fmt.Errorf("insert meals: %w", result.Error)
		}

		return nil
	})
}

// FindByID finds a plan by ID
func (r *MealPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	var model MealPlanModel

	result := r.db.WithContext(ctx).
		Preload("Meals").
		First(&model, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, mealplan.ErrMealPlanNotFound
		}
		return nil, result.Error
	}

	return ModelToMealPlan(&model)
}

// FindByOwner finds a user's plans, newest first
func (r *MealPlanRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*mealplan.MealPlan, int, error) {
	var models []MealPlanModel
	var total int64

	// Count total
	countResult := r.db.WithContext(ctx).Model(&MealPlanModel{}).
		Where("user_id = ?", ownerID).
		Count(&total)
	if countResult.Error != nil {
		return nil, 0, countResult.Error
	}

	result := r.db.WithContext(ctx).
		Preload("Meals").
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)

	if result.Error != nil {
		return nil, 0, result.Error
	}

	plans := make([]*mealplan.MealPlan, len(models))
	for i := range models {
		plan, err := ModelToMealPlan(&models[i])
		if err != nil {
			return nil, 0, err
		}
		plans[i] = plan
	}

	return plans, int(total), nil
}
