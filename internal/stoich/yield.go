package stoich

import (
	"math"
	"strconv"
)

// yieldWarningPercent leaves room for rounding before flagging a yield above 100%.
const yieldWarningPercent = 100.1

// PercentResult is a percentage rounded for display with an optional warning.
type PercentResult struct {
	Percent float64 `json:"percent"`
	Display string  `json:"display"`
	Warning string  `json:"warning,omitempty"`
}

// PercentageYield returns actual / theoretical × 100.
func PercentageYield(actual, theoretical float64) (PercentResult, error) {
	if theoretical <= 0 {
		return PercentResult{}, invalid("theoretical", "theoretical yield must be > 0")
	}
	if actual < 0 {
		return PercentResult{}, invalid("actual", "actual yield cannot be negative")
	}
	pct := actual / theoretical * 100
	res := PercentResult{Percent: pct, Display: formatPercent(pct)}
	if pct > yieldWarningPercent {
		res.Warning = "yield > 100%, check values/calculation"
	}
	return res, nil
}

// PercentagePurity returns pure / total × 100.
func PercentagePurity(pure, total float64) (PercentResult, error) {
	if total <= 0 {
		return PercentResult{}, invalid("total", "total sample mass must be > 0")
	}
	if pure < 0 {
		return PercentResult{}, invalid("pure", "mass of pure substance cannot be negative")
	}
	if pure > total && math.Abs(pure-total) > 1e-6 {
		return PercentResult{}, invalid("pure", "pure mass cannot be greater than total sample mass")
	}
	pct := pure / total * 100
	return PercentResult{Percent: pct, Display: formatPercent(pct)}, nil
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}
