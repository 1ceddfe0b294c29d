package materials

import (
	"fmt"
	"math"
	"strconv"

	"interiors-erp/internal/apperr"
)

// Quantities are float64; comparisons allow for accumulated rounding noise.
const epsilon = 1e-9

// OverAllocation is attached as error details when a write would push
// used above assigned.
type OverAllocation struct {
	Requested float64 `json:"requested"`
	Remaining float64 `json:"remaining"`
	Excess    float64 `json:"excess"`
}

func formatQty(q float64) string {
	return strconv.FormatFloat(math.Round(q*1e4)/1e4, 'f', -1, 64)
}

// Remaining is always derived, never stored.
func Remaining(assigned, used float64) float64 {
	return assigned - used
}

func checkPositive(qty float64) error {
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return apperr.Validation("Quantity must be greater than zero")
	}
	return nil
}

// CheckUsage validates logging qty against a ProjectMaterial's current state.
func CheckUsage(assigned, used, qty float64) error {
	if err := checkPositive(qty); err != nil {
		return err
	}
	remaining := Remaining(assigned, used)
	if qty > remaining+epsilon {
		o := OverAllocation{Requested: qty, Remaining: remaining, Excess: qty - remaining}
		return apperr.Validation("Quantity %s exceeds remaining stock %s by %s",
			formatQty(qty), formatQty(remaining), formatQty(o.Excess)).WithDetails(o)
	}
	return nil
}

// CheckUsageEdit validates changing a log from oldQty to newQty. Only the
// delta draws on remaining stock.
func CheckUsageEdit(assigned, used, oldQty, newQty float64) error {
	if err := checkPositive(newQty); err != nil {
		return err
	}
	delta := newQty - oldQty
	remaining := Remaining(assigned, used)
	if after := remaining - delta; after < -epsilon {
		o := OverAllocation{Requested: delta, Remaining: remaining, Excess: -after}
		return apperr.Validation("Updated quantity %s exceeds remaining stock by %s (only %s more available)",
			formatQty(newQty), formatQty(o.Excess), formatQty(remaining)).WithDetails(o)
	}
	// used would drop below zero only if the stored counters are already out of sync
	if used+delta < -epsilon {
		return apperr.Conflict("Used quantity is out of sync with usage logs")
	}
	return nil
}

// UsageWarning returns advisory text once remaining stock falls to or below
// ratio of the assigned quantity. It never blocks a write.
func UsageWarning(assigned, usedAfter, ratio float64, unit string) string {
	if assigned <= 0 || ratio <= 0 {
		return ""
	}
	remaining := Remaining(assigned, usedAfter)
	if remaining > assigned*ratio+epsilon {
		return ""
	}
	if remaining <= epsilon {
		return "Allocated stock is fully used"
	}
	return fmt.Sprintf("Only %s %s remaining (%.0f%% of assigned)",
		formatQty(remaining), unit, remaining/assigned*100)
}
