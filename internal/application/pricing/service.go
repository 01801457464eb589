// Package pricing provides the application layer for location-based
// pricing reports
package pricing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/domain/pricing"
	"github.com/mealbuddy/engine/internal/ports/inbound"
	"github.com/mealbuddy/engine/internal/ports/outbound"
	apperrors "github.com/mealbuddy/engine/pkg/errors"
)

const cacheName = "pricing"

// Validator checks commands before they reach the domain
type Validator interface {
	ValidateStruct(s interface{}) error
}

// Service implements the pricing use cases
type Service struct {
	engine    *pricing.Engine
	cache     outbound.CacheRepository
	cacheTTL  time.Duration
	validator Validator
	metrics   outbound.MetricsRecorder
	logger    *zap.Logger
}

// NewService creates a new pricing service. A nil cache disables caching.
func NewService(
	engine *pricing.Engine,
	cache outbound.CacheRepository,
	cacheTTL time.Duration,
	validator Validator,
	metrics outbound.MetricsRecorder,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Service{
		engine:    engine,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validator,
		metrics:   metrics,
		logger:    logger.Named("pricing-service"),
	}
}

var _ inbound.PricingService = (*Service)(nil)

// GetLocationRecommendations returns the pricing report for the request,
// serving repeated requests from the cache
func (s *Service) GetLocationRecommendations(ctx context.Context, cmd inbound.PricingCommand) (*pricing.Report, error) {
	if err := s.validator.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	tier, err := pricing.ParseBudgetTier(cmd.BudgetPreference)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	return s.Report(ctx, cmd.Ingredients, cmd.Location, tier)
}

// Report prices already validated inputs. Cache failures are logged and
// never fail the request.
func (s *Service) Report(ctx context.Context, ingredients []string, location string, tier pricing.BudgetTier) (*pricing.Report, error) {
	key := cacheKey(ingredients, location, tier)

	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	report, err := s.engine.Price(ingredients, location, tier)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidBudgetTier) {
			return nil, apperrors.NewValidationError(err.Error())
		}
		return nil, apperrors.Wrap(err, "failed to price ingredients")
	}
	s.metrics.PricingReported(string(tier))

	s.store(ctx, key, report)

	return report, nil
}

func (s *Service) fromCache(ctx context.Context, key string) (*pricing.Report, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	switch {
	case errors.Is(err, outbound.ErrCacheMiss):
		s.metrics.CacheOperation(cacheName, "miss")
		return nil, false
	case err != nil:
		s.metrics.CacheOperation(cacheName, "error")
		s.logger.Warn("Pricing cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	var report pricing.Report
	if err := json.Unmarshal(data, &report); err != nil {
		s.metrics.CacheOperation(cacheName, "error")
		s.logger.Warn("Discarding corrupt pricing cache entry", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}

	s.metrics.CacheOperation(cacheName, "hit")
	return &report, true
}

func (s *Service) store(ctx context.Context, key string, report *pricing.Report) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("Failed to encode pricing report", zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("Pricing cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey identifies a report by its inputs. Ingredient names are echoed in
// the report, so they are kept verbatim and in order; location matching is
// case-insensitive, so it is folded.
func cacheKey(ingredients []string, location string, tier pricing.BudgetTier) string {
	payload, _ := json.Marshal(struct {
		Ingredients []string `json:"i"`
		Location    string   `json:"l"`
		Tier        string   `json:"t"`
	}{
		Ingredients: ingredients,
		Location:    strings.ToLower(strings.TrimSpace(location)),
		Tier:        string(tier),
	})

	sum := sha256.Sum256(payload)
	return "pricing:" + hex.EncodeToString(sum[:])
}
