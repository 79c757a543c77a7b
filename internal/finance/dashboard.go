package finance

import (
	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// DashboardInput is everything a user owns, already loaded.
type DashboardInput struct {
	Today          calendar.Date
	Transactions   []models.Transaction
	Installments   []models.InstallmentPlan
	Subscriptions  []models.RecurringPlan
	PaymentMethods []models.PaymentMethod
	Investments    []models.Investment
	Prices         []models.MarketPrice
	Savings        []models.Saving
	FXRate         decimal.NullDecimal
}

// Dashboard is the home summary of a user.
type Dashboard struct {
	Today calendar.Date `json:"today"`
	// MonthBalance is the signed sum of transactions whose effective date
	// falls in the current month.
	MonthBalance     decimal.Decimal `json:"month_balance"`
	InstallmentDebt  decimal.Decimal `json:"installment_debt"`
	ActivePlans      int             `json:"active_installment_plans"`
	FixedMonthlyCost decimal.Decimal `json:"fixed_monthly_cost"`
	// PersonalBalance is the all-time signed sum on personal methods.
	PersonalBalance decimal.Decimal                     `json:"personal_balance"`
	Portfolio       Portfolio                           `json:"portfolio"`
	Savings         map[models.Currency]decimal.Decimal `json:"savings"`
	Patrimony       Patrimony                           `json:"patrimony"`
	PaymentMethods  []PaymentMethodStatus               `json:"payment_methods"`
}

// BuildDashboard composes the dashboard. Installment debt uses the ledger
// policy and skips finished plans.
func BuildDashboard(in DashboardInput) Dashboard {
	methods := indexMethods(in.PaymentMethods)

	d := Dashboard{
		Today:            in.Today,
		MonthBalance:     decimal.Zero,
		InstallmentDebt:  decimal.Zero,
		PersonalBalance:  decimal.Zero,
		FixedMonthlyCost: TotalMonthlyCost(in.Subscriptions),
	}

	for _, tx := range in.Transactions {
		if methods.effectiveDate(tx).SameMonth(in.Today) {
			d.MonthBalance = d.MonthBalance.Add(Signed(tx))
		}
		if m := methods[tx.PaymentMethodID]; m != nil && m.IsPersonal {
			d.PersonalBalance = d.PersonalBalance.Add(Signed(tx))
		}
	}

	for _, plan := range in.Installments {
		policy := LedgerPolicy{Method: methods[plan.PaymentMethodID]}
		status := policy.Status(plan, PlanChildren(plan, in.Transactions), in.Today)
		if status.Finished {
			continue
		}
		d.ActivePlans++
		d.InstallmentDebt = d.InstallmentDebt.Add(status.Remaining)
	}

	d.Portfolio = ValuePortfolio(in.Investments, PriceIndex(in.Prices))
	d.Savings = SavingsBalance(in.Savings)
	d.Patrimony = ComputePatrimony(d.Portfolio, d.Savings, in.FXRate)
	d.PaymentMethods = PaymentMethodStatuses(in.PaymentMethods, in.Transactions, in.Subscriptions, in.Today)
	return d
}
