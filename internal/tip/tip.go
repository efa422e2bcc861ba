// Package tip implements the tip calculator. Two modes: compute the total
// from a bill and a tip percentage, or recover the percentage from a bill
// and the total actually paid. Display math only, so plain float64.
package tip

import "github.com/konnekonnekonne/Little-Helpers/internal/errs"

// QuickOptions are the preset tip percentages offered by the UI.
var QuickOptions = []float64{3, 5, 7, 10, 15}

// Result is a fully resolved tip calculation.
type Result struct {
	Bill       float64 `json:"bill"`
	Tip        float64 `json:"tip"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// FromPercentage computes tip and total for a bill and a tip percentage.
func FromPercentage(bill, percentage float64) (Result, error) {
	if bill < 0 {
		return Result{}, errs.Validationf("bill amount must not be negative")
	}
	if percentage < 0 {
		return Result{}, errs.Validationf("tip percentage must not be negative")
	}

	tip := bill * percentage / 100
	return Result{
		Bill:       bill,
		Tip:        tip,
		Total:      bill + tip,
		Percentage: percentage,
	}, nil
}

// FromTotal recovers the tip and its percentage from a bill and the total
// paid.
func FromTotal(bill, total float64) (Result, error) {
	if bill <= 0 {
		return Result{}, errs.Validationf("bill amount must be positive")
	}
	if total < bill {
		return Result{}, errs.Validationf("total must not be below the bill amount")
	}

	tip := total - bill
	return Result{
		Bill:       bill,
		Tip:        tip,
		Total:      total,
		Percentage: tip / bill * 100,
	}, nil
}
