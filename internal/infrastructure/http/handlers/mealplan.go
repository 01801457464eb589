// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/infrastructure/http/middleware"
	"github.com/mealbuddy/engine/internal/ports/inbound"
	apperrors "github.com/mealbuddy/engine/pkg/errors"
)

// MealPlanHandlers handles meal plan requests
type MealPlanHandlers struct {
	service inbound.MealPlanService
	logger  *zap.Logger
}

// NewMealPlanHandlers creates a new meal plan handlers instance
func NewMealPlanHandlers(service inbound.MealPlanService, logger *zap.Logger) *MealPlanHandlers {
	return &MealPlanHandlers{
		service: service,
		logger:  logger.Named("mealplan-handlers"),
	}
}

// GenerateMealPlanRequest is the body of a generation request
type GenerateMealPlanRequest struct {
	Ingredients        []string `json:"ingredients"`
	DietaryPreferences []string `json:"dietaryPreferences"`
	BudgetPreference   string   `json:"budgetPreference"`
	FamilySize         int      `json:"familySize"`
	Location           string   `json:"location"`
	IncludePricing     bool     `json:"includePricing"`
}

// MealPlanResponse wraps a single plan
type MealPlanResponse struct {
	MealPlan *inbound.MealPlanDTO `json:"mealPlan"`
}

// RegisterRoutes mounts the meal plan routes on an authenticated group
func (h *MealPlanHandlers) RegisterRoutes(rg *gin.RouterGroup) {
	plans := rg.Group("/meal-plans")
	plans.POST("", h.GenerateMealPlan)
	plans.GET("", h.ListMealPlans)
	plans.GET("/:id", h.GetMealPlan)
}

// GenerateMealPlan handles POST /api/v1/meal-plans
func (h *MealPlanHandlers) GenerateMealPlan(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthorizedError("Authentication required"))
		return
	}

	var req GenerateMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	result, err := h.service.GenerateMealPlan(c.Request.Context(), inbound.GenerateMealPlanCommand{
		UserID:             userID,
		Ingredients:        req.Ingredients,
		DietaryPreferences: req.DietaryPreferences,
		BudgetPreference:   req.BudgetPreference,
		FamilySize:         req.FamilySize,
		Location:           req.Location,
		IncludePricing:     req.IncludePricing,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Location", "/api/v1/meal-plans/"+result.MealPlan.ID.String())
	c.JSON(http.StatusCreated, result)
}

// GetMealPlan handles GET /api/v1/meal-plans/:id
func (h *MealPlanHandlers) GetMealPlan(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthorizedError("Authentication required"))
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("id must be a valid UUID"))
		return
	}

	plan, err := h.service.GetMealPlan(c.Request.Context(), planID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, MealPlanResponse{MealPlan: plan})
}

// ListMealPlans handles GET /api/v1/meal-plans
func (h *MealPlanHandlers) ListMealPlans(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthorizedError("Authentication required"))
		return
	}

	page, err := queryInt(c, "page")
	if err != nil {
		_ = c.Error(err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		_ = c.Error(err)
		return
	}

	list, err := h.service.ListMealPlans(c.Request.Context(), userID, inbound.PaginationParams{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(name + " must be an integer")
	}
	return value, nil
}
