// Package mealplan provides the application layer for meal plan generation.
// This implements the use cases defined in the inbound ports.
package mealplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/domain/pricing"
	"github.com/mealbuddy/engine/internal/domain/shared"
	"github.com/mealbuddy/engine/internal/ports/inbound"
	"github.com/mealbuddy/engine/internal/ports/outbound"
	apperrors "github.com/mealbuddy/engine/pkg/errors"
)

// Validator checks commands before they reach the domain
type Validator interface {
	ValidateStruct(s interface{}) error
}

// PricingReporter prices validated inputs
type PricingReporter interface {
	Report(ctx context.Context, ingredients []string, location string, tier pricing.BudgetTier) (*pricing.Report, error)
}

// Options tunes generation
type Options struct {
	PersistenceTimeout time.Duration
	MaxFamilySize      int
	// IncludePricing attaches a pricing report whenever a location is known,
	// even if the request did not ask for one
	IncludePricing bool
	ProfileLookup  bool
	ExportPlans    bool
}

// Dependencies groups the collaborators of the service
type Dependencies struct {
	Repository outbound.MealPlanRepository
	Profiles   outbound.ProfileRepository
	Pricing    PricingReporter
	Assembler  *mealplan.Assembler
	Storage    outbound.StorageService
	Events     shared.EventDispatcher
	Validator  Validator
	Metrics    outbound.MetricsRecorder
}

// Service implements the meal plan use cases
type Service struct {
	repo      outbound.MealPlanRepository
	profiles  outbound.ProfileRepository
	pricing   PricingReporter
	assembler *mealplan.Assembler
	storage   outbound.StorageService
	events    shared.EventDispatcher
	validator Validator
	metrics   outbound.MetricsRecorder
	opts      Options
	logger    *zap.Logger
}

// NewService creates a new meal plan service
func NewService(deps Dependencies, opts Options, logger *zap.Logger) *Service {
	if deps.Metrics == nil {
		deps.Metrics = outbound.NopMetrics{}
	}
	if deps.Events == nil {
		deps.Events = shared.NewSyncDispatcher()
	}
	if deps.Assembler == nil {
		deps.Assembler = mealplan.NewAssembler(nil, nil)
	}
	if opts.PersistenceTimeout <= 0 {
		opts.PersistenceTimeout = 5 * time.Second
	}

	return &Service{
		repo:      deps.Repository,
		profiles:  deps.Profiles,
		pricing:   deps.Pricing,
		assembler: deps.Assembler,
		storage:   deps.Storage,
		events:    deps.Events,
		validator: deps.Validator,
		metrics:   deps.Metrics,
		opts:      opts,
		logger:    logger.Named("mealplan-service"),
	}
}

var _ inbound.MealPlanService = (*Service)(nil)

// GenerateMealPlan assembles, prices and stores a week of meals. The plan is
// returned only once it has been stored.
func (s *Service) GenerateMealPlan(ctx context.Context, cmd inbound.GenerateMealPlanCommand) (*inbound.GenerateMealPlanResult, error) {
	start := time.Now()

	cmd.Location = strings.TrimSpace(cmd.Location)

	if err := s.validator.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	if s.opts.MaxFamilySize > 0 && cmd.FamilySize > s.opts.MaxFamilySize {
		return nil, apperrors.NewValidationError(fmt.Sprintf("familySize must be at most %d", s.opts.MaxFamilySize))
	}

	tier, err := pricing.ParseBudgetTier(cmd.BudgetPreference)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	logger := s.logger.With(
		zap.String("user_id", cmd.UserID.String()),
		zap.String("budget_tier", string(tier)),
		zap.Int("family_size", cmd.FamilySize),
		zap.Int("ingredients", len(cmd.Ingredients)),
	)

	location := s.resolveLocation(ctx, cmd.UserID, cmd.Location, logger)
	withPricing := location != "" && s.pricing != nil && (cmd.IncludePricing || s.opts.IncludePricing)

	var (
		plan   *mealplan.MealPlan
		report *pricing.Report
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plan, err = s.assembler.Assemble(mealplan.AssembleCommand{
			OwnerID:            cmd.UserID,
			Ingredients:        cmd.Ingredients,
			DietaryPreferences: cmd.DietaryPreferences,
			BudgetTier:         tier,
			FamilySize:         cmd.FamilySize,
			Location:           location,
		})
		return err
	})
	if withPricing {
		g.Go(func() error {
			var err error
			report, err = s.pricing.Report(gctx, cmd.Ingredients, location, tier)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, s.assemblyError(err, logger)
	}

	if err := s.persist(ctx, plan, logger); err != nil {
		return nil, err
	}

	for _, event := range plan.Events() {
		if err := s.events.Dispatch(event); err != nil {
			logger.Error("Failed to dispatch event",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}

	dto := inbound.NewMealPlanDTO(plan)
	s.export(ctx, plan.OwnerID(), dto, logger)

	s.metrics.GenerationCompleted(time.Since(start))
	logger.Info("Meal plan generated",
		zap.String("meal_plan_id", dto.ID.String()),
		zap.Float64("total_cost", dto.TotalEstimatedCost),
		zap.Bool("with_pricing", report != nil),
		zap.Duration("duration", time.Since(start)),
	)

	return &inbound.GenerateMealPlanResult{
		MealPlan:      dto,
		PricingReport: report,
	}, nil
}

// GetMealPlan returns a stored plan owned by userID
func (s *Service) GetMealPlan(ctx context.Context, planID, userID uuid.UUID) (*inbound.MealPlanDTO, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, mealplan.ErrMealPlanNotFound) {
			return nil, apperrors.NewMealPlanNotFoundError(planID.String())
		}
		return nil, apperrors.NewDatabaseError("find meal plan", err)
	}

	if !plan.OwnedBy(userID) {
		s.logger.Warn("Meal plan access denied",
			zap.String("meal_plan_id", planID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, apperrors.NewForbiddenError("You do not have access to this meal plan")
	}

	return inbound.NewMealPlanDTO(plan), nil
}

// ListMealPlans returns a page of the user's plans, newest first
func (s *Service) ListMealPlans(ctx context.Context, userID uuid.UUID, params inbound.PaginationParams) (*inbound.MealPlanList, error) {
	params = params.Normalize()

	plans, total, err := s.repo.FindByOwner(ctx, userID, params.Offset(), params.Limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list meal plans", err)
	}

	dtos := make([]*inbound.MealPlanDTO, len(plans))
	for i, plan := range plans {
		dtos[i] = inbound.NewMealPlanDTO(plan)
	}

	return &inbound.MealPlanList{
		MealPlans:  dtos,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: (total + params.Limit - 1) / params.Limit,
	}, nil
}

// resolveLocation falls back to the profile location. A failed lookup is
// treated as no location.
func (s *Service) resolveLocation(ctx context.Context, userID uuid.UUID, requested string, logger *zap.Logger) string {
	if requested != "" || !s.opts.ProfileLookup || s.profiles == nil {
		return requested
	}

	location, err := s.profiles.FindLocation(ctx, userID)
	if err != nil {
		logger.Warn("Profile location lookup failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(location)
}

func (s *Service) assemblyError(err error, logger *zap.Logger) error {
	switch {
	case errors.Is(err, mealplan.ErrInvalidFamilySize),
		errors.Is(err, mealplan.ErrMissingOwner),
		errors.Is(err, pricing.ErrInvalidBudgetTier):
		return apperrors.NewValidationError(err.Error())
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	logger.Error("Meal plan assembly failed", zap.String("stage", "assemble"), zap.Error(err))
	return apperrors.Wrap(err, "failed to generate meal plan")
}

// persist stores the plan within the persistence timeout. On failure the
// plan is discarded.
func (s *Service) persist(ctx context.Context, plan *mealplan.MealPlan, logger *zap.Logger) error {
	saveCtx, cancel := context.WithTimeout(ctx, s.opts.PersistenceTimeout)
	defer cancel()

	err := s.repo.Save(saveCtx, plan)
	if err == nil {
		return nil
	}

	fields := []zap.Field{
		zap.String("stage", "persist"),
		zap.String("meal_plan_id", plan.ID().String()),
		zap.Strings("ingredients", plan.Ingredients()),
		zap.String("location", plan.Location()),
		zap.Error(err),
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(saveCtx.Err(), context.DeadlineExceeded) {
		s.metrics.PersistenceFailed("timeout")
		logger.Error("Meal plan persistence timed out", append(fields, zap.Duration("timeout", s.opts.PersistenceTimeout))...)
		return apperrors.NewTimeoutError("store meal plan", err)
	}

	s.metrics.PersistenceFailed("error")
	logger.Error("Meal plan persistence failed", fields...)
	return apperrors.NewDatabaseError("store meal plan", err)
}

// export uploads the plan document. Failures are logged only.
func (s *Service) export(ctx context.Context, ownerID uuid.UUID, dto *inbound.MealPlanDTO, logger *zap.Logger) {
	if !s.opts.ExportPlans || s.storage == nil {
		return
	}

	body, err := json.Marshal(dto)
	if err != nil {
		s.metrics.PlanExported("failure")
		logger.Warn("Failed to encode meal plan for export", zap.Error(err))
		return
	}

	key := fmt.Sprintf("%s/%s.json", ownerID, dto.ID)
	location, err := s.storage.Upload(ctx, key, body, "application/json")
	if err != nil {
		s.metrics.PlanExported("failure")
		logger.Warn("Meal plan export failed", zap.String("key", key), zap.Error(err))
		return
	}

	s.metrics.PlanExported("success")
	logger.Debug("Meal plan exported", zap.String("location", location))
}
