//go:build integration

// Package integration runs the persistence layer against PostgreSQL
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	appmealplan "github.com/mealbuddy/engine/internal/application/mealplan"
	apppricing "github.com/mealbuddy/engine/internal/application/pricing"
	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/domain/pricing"
	gormrepo "github.com/mealbuddy/engine/internal/infrastructure/persistence/gorm"
	"github.com/mealbuddy/engine/internal/infrastructure/security"
	"github.com/mealbuddy/engine/internal/ports/inbound"
	"github.com/mealbuddy/engine/internal/ports/outbound"
	"github.com/mealbuddy/engine/test/testutils"
)

// MealPlanRepositoryIntegrationTestSuite exercises the GORM repositories
// against the migrated PostgreSQL schema
type MealPlanRepositoryIntegrationTestSuite struct {
	suite.Suite
	testDB   *testutils.TestDatabase
	repo     outbound.MealPlanRepository
	profiles outbound.ProfileRepository
	factory  *testutils.MealPlanRequestFactory
	ctx      context.Context
}

func (s *MealPlanRepositoryIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.testDB = testutils.SetupTestDatabase(s.T())
	s.repo = gormrepo.NewMealPlanRepository(s.testDB.GormDB)
	s.profiles = gormrepo.NewProfileRepository(s.testDB.GormDB)
	s.factory = testutils.NewMealPlanRequestFactory(42)
}

func (s *MealPlanRepositoryIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.testDB.TruncateAllTables())
}

func (s *MealPlanRepositoryIntegrationTestSuite) countRows(query string, args ...interface{}) int {
	var n int
	s.Require().NoError(s.testDB.DB.QueryRowContext(s.ctx, query, args...).Scan(&n))
	return n
}

func (s *MealPlanRepositoryIntegrationTestSuite) TestSaveAndFind() {
	plan, err := testutils.NewMealPlanBuilder().WithLocation("Miami, Florida").Build()
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Save(s.ctx, plan))

	found, err := s.repo.FindByID(s.ctx, plan.ID())
	s.Require().NoError(err)
	s.Equal(plan.OwnerID(), found.OwnerID())
	s.Equal(plan.Meals(), found.Meals())
	s.InDelta(plan.TotalCost(), found.TotalCost(), 1e-9)
	s.Equal("2024-05-13", found.WeekStart().Format(mealplan.WeekStartLayout))
	s.Equal("Miami, Florida", found.Location())
	s.Equal(21, s.countRows("SELECT COUNT(*) FROM meals WHERE meal_plan_id = $1", plan.ID().String()))
}

func (s *MealPlanRepositoryIntegrationTestSuite) TestSaveIsIdempotent() {
	plan, err := testutils.NewMealPlanBuilder().Build()
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Save(s.ctx, plan))
	s.Require().NoError(s.repo.Save(s.ctx, plan))

	s.Equal(1, s.countRows("SELECT COUNT(*) FROM meal_plans"))
	s.Equal(21, s.countRows("SELECT COUNT(*) FROM meals"))
}

func (s *MealPlanRepositoryIntegrationTestSuite) TestSlotConstraint() {
	plan, err := testutils.NewMealPlanBuilder().Build()
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Save(s.ctx, plan))

	_, err = s.testDB.DB.ExecContext(s.ctx,
		`INSERT INTO meals (id, meal_plan_id, day_of_week, meal_type, recipe_name) VALUES ($1, $2, 1, 'dinner', 'Second Dinner')`,
		uuid.NewString(), plan.ID().String())

	s.Error(err)
}

func (s *MealPlanRepositoryIntegrationTestSuite) TestFindByOwnerNewestFirst() {
	owner := uuid.New()
	base := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		plan, err := testutils.NewMealPlanBuilder().WithOwner(owner).WithNow(base.Add(time.Duration(i) * time.Hour)).Build()
		s.Require().NoError(err)
		s.Require().NoError(s.repo.Save(s.ctx, plan))
		ids = append(ids, plan.ID())
	}

	plans, total, err := s.repo.FindByOwner(s.ctx, owner, 0, 2)
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(plans, 2)
	s.Equal(ids[2], plans[0].ID())
	s.Equal(ids[1], plans[1].ID())
}

func (s *MealPlanRepositoryIntegrationTestSuite) TestGenerateThroughService() {
	owner := uuid.New()
	_, err := s.testDB.DB.ExecContext(s.ctx, `INSERT INTO profiles (user_id, location) VALUES ($1, $2)`,
		owner.String(), "Austin, Texas")
	s.Require().NoError(err)

	log := zap.NewNop()
	validator := security.NewValidationService(log)
	pricingSvc := apppricing.NewService(pricing.NewEngine(), nil, 0, validator, nil, log)
	svc := appmealplan.NewService(appmealplan.Dependencies{
		Repository: s.repo,
		Profiles:   s.profiles,
		Pricing:    pricingSvc,
		Validator:  validator,
	}, appmealplan.Options{ProfileLookup: true, IncludePricing: true}, log)

	cmd := s.factory.GenerateCommand(owner)
	cmd.Location = ""
	result, err := svc.GenerateMealPlan(s.ctx, cmd)
	s.Require().NoError(err)
	testutils.NewMealPlanAssertions(s.T()).CompleteWeek(result.MealPlan, cmd.FamilySize)
	s.Equal("Austin, Texas", result.MealPlan.Location)
	s.NotNil(result.PricingReport)

	list, err := svc.ListMealPlans(s.ctx, owner, inbound.PaginationParams{Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, list.Total)
	s.Equal(result.MealPlan.ID, list.MealPlans[0].ID)
}

func TestMealPlanRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(MealPlanRepositoryIntegrationTestSuite))
}
