package finance

import (
	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// PaymentMethodStatus is the consumption of a payment method in its current
// statement, split into variable spend and fixed costs.
type PaymentMethodStatus struct {
	PaymentMethodID string `json:"payment_method_id"`
	// Windowed is false when the method has no billing cycle and every
	// linked transaction was summed.
	Windowed           bool            `json:"windowed"`
	Cycle              *Cycle          `json:"cycle,omitempty"`
	CurrentCycleSpent  decimal.Decimal `json:"current_cycle_spent"`
	FixedCosts         decimal.Decimal `json:"fixed_costs"`
	CurrentConsumption decimal.Decimal `json:"current_consumption"`
	ProjectedTotal     decimal.Decimal `json:"projected_total"`
}

// PaymentMethodStatusFor computes the status of method as of today.
//
// For a credit method with a cycle, the statement is the one due for a
// purchase made today, and a transaction belongs to it when its effective
// date falls in the same month as that due date. Other methods sum every
// linked transaction. Spend is reported positive for net expenses.
func PaymentMethodStatusFor(method models.PaymentMethod, txs []models.Transaction, plans []models.RecurringPlan, today calendar.Date) PaymentMethodStatus {
	status := PaymentMethodStatus{PaymentMethodID: method.ID}

	cycle, windowed := MethodCycle(&method, today)
	if windowed {
		status.Windowed = true
		status.Cycle = &cycle
	}

	net := decimal.Zero
	for _, tx := range txs {
		if tx.PaymentMethodID != method.ID {
			continue
		}
		if windowed && !EffectiveDate(tx, &method).SameMonth(cycle.Due) {
			continue
		}
		net = net.Add(Signed(tx))
	}
	spent := net.Neg()

	status.CurrentCycleSpent = spent
	status.FixedCosts = TotalMonthlyCost(ActivePlans(plans, method.ID))
	status.CurrentConsumption = spent.Sub(status.FixedCosts)
	status.ProjectedTotal = status.CurrentConsumption.Add(status.FixedCosts)
	return status
}

// PaymentMethodStatuses computes the status of every method.
func PaymentMethodStatuses(methods []models.PaymentMethod, txs []models.Transaction, plans []models.RecurringPlan, today calendar.Date) []PaymentMethodStatus {
	out := make([]PaymentMethodStatus, 0, len(methods))
	for _, m := range methods {
		out = append(out, PaymentMethodStatusFor(m, txs, plans, today))
	}
	return out
}
