package security

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/domain/pricing"
	apperrors "github.com/mealbuddy/engine/pkg/errors"
)

// ValidationService provides input validation and sanitization
type ValidationService struct {
	logger    *zap.Logger
	validator *validator.Validate
}

// NewValidationService creates a new validation service
func NewValidationService(logger *zap.Logger) *ValidationService {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so messages match the request body
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return lowerFirst(fld.Name)
		}
		return name
	})

	// Register custom validation rules
	validate.RegisterValidation("ingredient", validateIngredient)
	validate.RegisterValidation("budget_tier", validateBudgetTier)

	return &ValidationService{
		logger:    logger.Named("validation"),
		validator: validate,
	}
}

// validateIngredient checks an ingredient name is non-blank, printable and
// free of markup. Names are checked as given, never rewritten.
func validateIngredient(fl validator.FieldLevel) bool {
	ingredient := fl.Field().String()

	if strings.TrimSpace(ingredient) == "" || len(ingredient) > 100 {
		return false
	}

	dangerous := []string{"<", ">", "script", "javascript:", "onload", "onerror"}
	ingredientLower := strings.ToLower(ingredient)
	for _, danger := range dangerous {
		if strings.Contains(ingredientLower, danger) {
			return false
		}
	}

	for _, r := range ingredient {
		if !unicode.IsPrint(r) {
			return false
		}
	}

	return true
}

func validateBudgetTier(fl validator.FieldLevel) bool {
	_, err := pricing.ParseBudgetTier(fl.Field().String())
	return err == nil
}

// ValidateStruct validates a struct and converts failures to an AppError
func (v *ValidationService) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		v.logger.Error("Validator misuse", zap.Error(err))
		return apperrors.NewInternalError("").WithCause(err)
	}

	fields := make([]apperrors.ValidationError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, apperrors.ValidationError{
			Field:   fieldPath(e),
			Value:   e.Value(),
			Tag:     e.Tag(),
			Message: message(e),
		})
	}

	return apperrors.NewValidationErrors(fields)
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	field := fieldPath(e)

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items", field, e.Param())
		}
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "ingredient":
		return fmt.Sprintf("%s is not a valid ingredient name", field)
	case "budget_tier":
		return fmt.Sprintf("%s must be one of budget, moderate, premium", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
