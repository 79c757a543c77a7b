package finance

import (
	"time"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/models"
)

// Cycle is a credit card billing cycle identified by its closing date and the
// date its statement is due.
type Cycle struct {
	Closing calendar.Date `json:"closing"`
	Due     calendar.Date `json:"due"`
}

// CycleFor returns the billing cycle a purchase made on d belongs to.
//
// A purchase on or before the closing day lands in the cycle closing that
// month and is due the next month; a later purchase lands in the next cycle.
// Closing and payment days beyond the end of a month are clamped to its last
// day, so a closing day of 31 closes on April 30th.
func CycleFor(d calendar.Date, closingDay, paymentDay int) Cycle {
	offset := time.Month(0)
	if d.Day() > calendar.Clamped(d.Year(), d.Month(), closingDay).Day() {
		offset = 1
	}
	return Cycle{
		Closing: calendar.Clamped(d.Year(), d.Month()+offset, closingDay),
		Due:     calendar.Clamped(d.Year(), d.Month()+offset+1, paymentDay),
	}
}

// MethodCycle returns the cycle for d on method. ok is false when the method
// is not a credit method with both cycle days configured.
func MethodCycle(method *models.PaymentMethod, d calendar.Date) (c Cycle, ok bool) {
	if !method.HasCycle() {
		return Cycle{}, false
	}
	return CycleFor(d, *method.DefaultClosingDay, *method.DefaultPaymentDay), true
}

// EffectiveDate is the date a transaction hits the balance: its due date for
// credit methods with a cycle, its own date otherwise.
func EffectiveDate(tx models.Transaction, method *models.PaymentMethod) calendar.Date {
	if c, ok := MethodCycle(method, tx.Date); ok {
		return c.Due
	}
	return tx.Date
}

// methodIndex maps payment method ids to methods.
type methodIndex map[string]*models.PaymentMethod

func indexMethods(methods []models.PaymentMethod) methodIndex {
	idx := make(methodIndex, len(methods))
	for i := range methods {
		idx[methods[i].ID] = &methods[i]
	}
	return idx
}

// effectiveDate resolves the method of tx in the index. Unknown or empty
// method ids fall back to the transaction date.
func (idx methodIndex) effectiveDate(tx models.Transaction) calendar.Date {
	return EffectiveDate(tx, idx[tx.PaymentMethodID])
}
