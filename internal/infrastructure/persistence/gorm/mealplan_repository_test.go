package gorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/domain/pricing"
	gormrepo "github.com/mealbuddy/engine/internal/infrastructure/persistence/gorm"
	"github.com/mealbuddy/engine/internal/infrastructure/persistence/sqlite"
	"github.com/mealbuddy/engine/internal/ports/outbound"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// MealPlanRepositoryTestSuite runs the repository against in-memory SQLite
type MealPlanRepositoryTestSuite struct {
	suite.Suite
	db        *gorm.DB
	repo      outbound.MealPlanRepository
	profiles  outbound.ProfileRepository
	assembler *mealplan.Assembler
	ctx       context.Context
}

func (s *MealPlanRepositoryTestSuite) SetupTest() {
	db, err := sqlite.SetupDatabase("", nil)
	s.Require().NoError(err)

	s.db = db
	s.repo = gormrepo.NewMealPlanRepository(db)
	s.profiles = gormrepo.NewProfileRepository(db)
	s.assembler = mealplan.NewAssembler(fixedClock{time.Date(2024, 5, 15, 12, 0, 0, 0, time.Local)}, nil)
	s.ctx = context.Background()
}

func (s *MealPlanRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())
}

func (s *MealPlanRepositoryTestSuite) newPlan(owner uuid.UUID) *mealplan.MealPlan {
	plan, err := s.assembler.Assemble(mealplan.AssembleCommand{
		OwnerID:            owner,
		Ingredients:        []string{"chicken", "rice"},
		DietaryPreferences: []string{"gluten-free"},
		BudgetTier:         pricing.BudgetTierBudget,
		FamilySize:         3,
		Location:           "Austin, Texas",
	})
	s.Require().NoError(err)
	return plan
}

func (s *MealPlanRepositoryTestSuite) countMeals(planID uuid.UUID) int64 {
	var count int64
	s.Require().NoError(s.db.Model(&gormrepo.MealModel{}).Where("meal_plan_id = ?", planID).Count(&count).Error)
	return count
}

func (s *MealPlanRepositoryTestSuite) TestSaveAndFind() {
	// Arrange
	plan := s.newPlan(uuid.New())

	// Act
	err := s.repo.Save(s.ctx, plan)
	s.Require().NoError(err)
	found, err := s.repo.FindByID(s.ctx, plan.ID())

	// Assert
	s.Require().NoError(err)
	s.Equal(plan.ID(), found.ID())
	s.Equal(plan.OwnerID(), found.OwnerID())
	s.Equal(plan.Title(), found.Title())
	s.Equal("2024-05-13", found.WeekStart().Format(mealplan.WeekStartLayout))
	s.Equal(plan.TotalCost(), found.TotalCost())
	s.Equal(plan.Meals(), found.Meals())
	s.Equal([]string{"chicken", "rice"}, found.Ingredients())
	s.Equal([]string{"gluten-free"}, found.DietaryPreferences())
	s.Equal(pricing.BudgetTierBudget, found.BudgetTier())
	s.Equal(3, found.FamilySize())
	s.Equal("Austin, Texas", found.Location())
}

func (s *MealPlanRepositoryTestSuite) TestSaveTwiceIsIdempotent() {
	plan := s.newPlan(uuid.New())

	s.Require().NoError(s.repo.Save(s.ctx, plan))
	s.Require().NoError(s.repo.Save(s.ctx, plan))

	s.Equal(int64(21), s.countMeals(plan.ID()))

	var plans int64
	s.Require().NoError(s.db.Model(&gormrepo.MealPlanModel{}).Count(&plans).Error)
	s.Equal(int64(1), plans)
}

func (s *MealPlanRepositoryTestSuite) TestSlotUniquenessEnforced() {
	plan := s.newPlan(uuid.New())
	s.Require().NoError(s.repo.Save(s.ctx, plan))

	duplicate := gormrepo.MealModel{
		MealPlanID: plan.ID(),
		DayOfWeek:  1,
		MealType:   string(mealplan.MealTypeLunch),
		RecipeName: "Extra Lunch",
	}
	err := s.db.Create(&duplicate).Error

	s.Error(err)
	s.Equal(int64(21), s.countMeals(plan.ID()))
}

func (s *MealPlanRepositoryTestSuite) TestFailedSaveLeavesNothing() {
	plan := s.newPlan(uuid.New())
	s.Require().NoError(s.db.Migrator().DropTable(&gormrepo.MealModel{}))

	err := s.repo.Save(s.ctx, plan)
	s.Error(err)

	var plans int64
	s.Require().NoError(s.db.Model(&gormrepo.MealPlanModel{}).Count(&plans).Error)
	s.Zero(plans)
}

func (s *MealPlanRepositoryTestSuite) TestFindByIDNotFound() {
	_, err := s.repo.FindByID(s.ctx, uuid.New())
	s.ErrorIs(err, mealplan.ErrMealPlanNotFound)
}

func (s *MealPlanRepositoryTestSuite) TestFindByOwner() {
	owner := uuid.New()
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.repo.Save(s.ctx, s.newPlan(owner)))
	}
	s.Require().NoError(s.repo.Save(s.ctx, s.newPlan(uuid.New())))

	plans, total, err := s.repo.FindByOwner(s.ctx, owner, 0, 2)
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Len(plans, 2)
	for _, p := range plans {
		s.True(p.OwnedBy(owner))
		s.Len(p.Meals(), 21)
	}
}

func (s *MealPlanRepositoryTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	err := s.repo.Save(ctx, s.newPlan(uuid.New()))
	s.Error(err)
}

func (s *MealPlanRepositoryTestSuite) TestProfileLocation() {
	userID := uuid.New()
	s.Require().NoError(sqlite.SeedProfile(s.db, gormrepo.ProfileModel{UserID: userID, Location: "Portland, Maine"}))

	location, err := s.profiles.FindLocation(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal("Portland, Maine", location)

	location, err = s.profiles.FindLocation(s.ctx, uuid.New())
	s.Require().NoError(err)
	s.Empty(location)
}

func TestMealPlanRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MealPlanRepositoryTestSuite))
}
