// Package gorm provides GORM model definitions and repositories
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealPlanModel represents the GORM model for meal plans
type MealPlanModel struct {
	ID                 uuid.UUID   `gorm:"type:char(36);primaryKey"`
	UserID             uuid.UUID   `gorm:"type:char(36);not null;index:idx_meal_plans_user_created,priority:1"`
	Title              string      `gorm:"type:varchar(255);not null"`
	WeekStartDate      string      `gorm:"type:varchar(10);not null"`
	Ingredients        StringSlice `gorm:"type:json"`
	DietaryPreferences StringSlice `gorm:"type:json"`
	BudgetPreference   string      `gorm:"type:varchar(20);not null"`
	FamilySize         int         `gorm:"not null"`
	Location           string      `gorm:"type:varchar(255)"`
	TotalEstimatedCost float64     `gorm:"not null"`
	CreatedAt          time.Time   `gorm:"index:idx_meal_plans_user_created,priority:2"`

	// Relationships
	Meals []MealModel `gorm:"foreignKey:MealPlanID;constraint:OnDelete:CASCADE"`
}

// MealModel represents one scheduled meal. (meal_plan_id, day_of_week,
// meal_type) is unique so a plan can never hold two meals for one slot.
type MealModel struct {
	ID                 uuid.UUID `gorm:"type:char(36);primaryKey"`
	MealPlanID         uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_meals_slot,priority:1"`
	DayOfWeek          int       `gorm:"not null;uniqueIndex:idx_meals_slot,priority:2"`
	MealType           string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_meals_slot,priority:3"`
	RecipeName         string    `gorm:"type:varchar(255);not null"`
	RecipeInstructions string    `gorm:"type:text"`
	EstimatedPrepTime  int       `gorm:"not null;default:0"`
	EstimatedCost      float64   `gorm:"not null;default:0"`
}

// ProfileModel is the subset of the user profile this service reads
type ProfileModel struct {
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	Location  string    `gorm:"type:varchar(255)"`
	UpdatedAt time.Time
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BeforeCreate hook for MealPlanModel
func (m *MealPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for MealModel
func (m *MealModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (MealPlanModel) TableName() string {
	return "meal_plans"
}

func (MealModel) TableName() string {
	return "meals"
}

func (ProfileModel) TableName() string {
	return "profiles"
}

// AllModels lists the models managed by this package, in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&ProfileModel{},
		&MealPlanModel{},
		&MealModel{},
	}
}
