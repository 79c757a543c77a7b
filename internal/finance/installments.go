package finance

import (
	"fmt"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// FinishTolerance is how close to zero the remaining amount of a plan must be
// for the ledger policy to call it finished. Installment amounts are rounded
// to cents, so the ledger rarely sums to the exact total.
var FinishTolerance = decimal.NewFromInt(100)

var hundred = decimal.NewFromInt(100)

// InstallmentStatus is the amortization state of a plan at a given day.
type InstallmentStatus struct {
	Policy                string          `json:"policy"`
	InstallmentValue      decimal.Decimal `json:"installment_value"`
	Paid                  decimal.Decimal `json:"paid"`
	Remaining             decimal.Decimal `json:"remaining"`
	Progress              float64         `json:"progress"` // 0 to 100
	InstallmentsPaid      int             `json:"installments_paid"`
	InstallmentsRemaining int             `json:"installments_remaining"`
	CurrentInstallment    int             `json:"current_installment"`
	Finished              bool            `json:"finished"`
}

// AmortizationPolicy computes the status of a plan from its child
// transactions as of today.
type AmortizationPolicy interface {
	Name() string
	Status(plan models.InstallmentPlan, children []models.Transaction, today calendar.Date) InstallmentStatus
}

// InstallmentValue is TotalAmount / InstallmentsCount, or zero for a plan
// without installments.
func InstallmentValue(plan models.InstallmentPlan) decimal.Decimal {
	if plan.InstallmentsCount <= 0 {
		return decimal.Zero
	}
	return plan.TotalAmount.Div(decimal.NewFromInt(int64(plan.InstallmentsCount)))
}

// CalendarPolicy amortizes a plan by elapsed calendar months since purchase,
// ignoring the recorded transactions.
type CalendarPolicy struct{}

func (CalendarPolicy) Name() string { return "calendar" }

func (CalendarPolicy) Status(plan models.InstallmentPlan, _ []models.Transaction, today calendar.Date) InstallmentStatus {
	count := plan.InstallmentsCount
	if count < 0 {
		count = 0
	}
	value := InstallmentValue(plan)

	monthsPassed := max(calendar.MonthsBetween(today, plan.PurchaseDate), 0)
	remainingInstallments := max(count-monthsPassed, 0)
	remaining := value.Mul(decimal.NewFromInt(int64(remainingInstallments)))
	if remainingInstallments == 0 {
		// avoid leaving 1e-16 of a repeating decimal behind
		remaining = decimal.Zero
	}

	return InstallmentStatus{
		Policy:                "calendar",
		InstallmentValue:      value,
		Paid:                  plan.TotalAmount.Sub(remaining),
		Remaining:             remaining,
		Progress:              percentOf(plan.TotalAmount.Sub(remaining), plan.TotalAmount),
		InstallmentsPaid:      count - remainingInstallments,
		InstallmentsRemaining: remainingInstallments,
		CurrentInstallment:    min(monthsPassed+1, count),
		Finished:              remainingInstallments == 0,
	}
}

// LedgerPolicy amortizes a plan by the child transactions already due.
// Method is the payment method of the plan; on credit methods a transaction
// counts once its statement due date has been reached.
type LedgerPolicy struct {
	Method *models.PaymentMethod
}

func (LedgerPolicy) Name() string { return "ledger" }

func (p LedgerPolicy) Status(plan models.InstallmentPlan, children []models.Transaction, today calendar.Date) InstallmentStatus {
	count := max(plan.InstallmentsCount, 0)

	paid := decimal.Zero
	paidCount := 0
	for _, tx := range children {
		if tx.InstallmentPlanID != plan.ID {
			continue
		}
		if EffectiveDate(tx, p.Method).After(today) {
			continue
		}
		paid = paid.Add(tx.Amount)
		paidCount++
	}

	remaining := decimal.Max(plan.TotalAmount.Sub(paid), decimal.Zero)
	progress := percentOf(paid, plan.TotalAmount)
	if progress > 100 {
		progress = 100
	}

	return InstallmentStatus{
		Policy:                "ledger",
		InstallmentValue:      InstallmentValue(plan),
		Paid:                  paid,
		Remaining:             remaining,
		Progress:              progress,
		InstallmentsPaid:      paidCount,
		InstallmentsRemaining: max(count-paidCount, 0),
		CurrentInstallment:    min(paidCount+1, count),
		Finished:              remaining.LessThanOrEqual(FinishTolerance),
	}
}

// PolicyByName returns the named policy. The empty name selects the ledger
// policy, which reflects what was actually recorded.
func PolicyByName(name string, method *models.PaymentMethod) (AmortizationPolicy, error) {
	switch name {
	case "", "ledger":
		return LedgerPolicy{Method: method}, nil
	case "calendar":
		return CalendarPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown amortization policy %q", name)
	}
}

// PlanChildren returns the transactions belonging to plan.
func PlanChildren(plan models.InstallmentPlan, txs []models.Transaction) []models.Transaction {
	var children []models.Transaction
	for _, tx := range txs {
		if tx.InstallmentPlanID == plan.ID {
			children = append(children, tx)
		}
	}
	return children
}

// BuildInstallmentTransactions returns the child transactions of a new plan:
// one expense per installment, each for the installment value rounded to
// cents, dated on the purchase day of each following month (clamped to month
// end). IDs are left empty for the store to assign.
func BuildInstallmentTransactions(plan models.InstallmentPlan) []models.Transaction {
	if plan.InstallmentsCount <= 0 {
		return nil
	}
	amount := InstallmentValue(plan).Round(2)
	txs := make([]models.Transaction, 0, plan.InstallmentsCount)
	for i := 0; i < plan.InstallmentsCount; i++ {
		txs = append(txs, models.Transaction{
			UserID:            plan.UserID,
			Description:       fmt.Sprintf("%s (%d/%d)", plan.Description, i+1, plan.InstallmentsCount),
			Amount:            amount,
			Type:              models.TransactionExpense,
			Date:              plan.PurchaseDate.AddMonths(i),
			CategoryID:        plan.CategoryID,
			PaymentMethodID:   plan.PaymentMethodID,
			InstallmentPlanID: plan.ID,
		})
	}
	return txs
}

// percentOf returns part/whole*100, or 0 when whole is zero.
func percentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}
