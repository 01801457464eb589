package pricing

import "errors"

// Domain errors for pricing operations
var (
	ErrInvalidBudgetTier = errors.New("budget preference must be one of budget, moderate, premium")
)
