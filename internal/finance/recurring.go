package finance

import (
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// TotalMonthlyCost sums the amounts of the active plans.
func TotalMonthlyCost(plans []models.RecurringPlan) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plans {
		if p.IsActive {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// ActivePlans returns the active plans, optionally restricted to one payment
// method. An empty methodID keeps every method.
func ActivePlans(plans []models.RecurringPlan, methodID string) []models.RecurringPlan {
	var active []models.RecurringPlan
	for _, p := range plans {
		if !p.IsActive {
			continue
		}
		if methodID != "" && p.PaymentMethodID != methodID {
			continue
		}
		active = append(active, p)
	}
	return active
}
