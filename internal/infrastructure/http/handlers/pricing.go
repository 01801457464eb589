package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/ports/inbound"
	apperrors "github.com/mealbuddy/engine/pkg/errors"
)

// PricingHandlers handles location-based pricing requests
type PricingHandlers struct {
	service inbound.PricingService
	logger  *zap.Logger
}

// NewPricingHandlers creates a new pricing handlers instance
func NewPricingHandlers(service inbound.PricingService, logger *zap.Logger) *PricingHandlers {
	return &PricingHandlers{
		service: service,
		logger:  logger.Named("pricing-handlers"),
	}
}

// LocationRecommendationsRequest is the body of a pricing request
type LocationRecommendationsRequest struct {
	Location         string   `json:"location"`
	Ingredients      []string `json:"ingredients"`
	BudgetPreference string   `json:"budgetPreference"`
}

// RegisterRoutes mounts the pricing routes
func (h *PricingHandlers) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/location-recommendations", h.GetLocationRecommendations)
}

// GetLocationRecommendations handles POST /api/v1/location-recommendations
func (h *PricingHandlers) GetLocationRecommendations(c *gin.Context) {
	var req LocationRecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	report, err := h.service.GetLocationRecommendations(c.Request.Context(), inbound.PricingCommand{
		Location:         req.Location,
		Ingredients:      req.Ingredients,
		BudgetPreference: req.BudgetPreference,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// bindError turns a body decoding failure into a client error. A value of
// the wrong type, such as a fractional familySize, is a validation failure.
func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.NewValidationError(typeErr.Field + " must be of type " + typeErr.Type.String())
	}
	if errors.Is(err, io.EOF) {
		return apperrors.NewBadRequestError("Request body is required")
	}
	return apperrors.NewBadRequestError("Request body must be valid JSON")
}
