package models

import (
	"fmt"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense. Amount is never negative; the
// sign comes from Type.
type Transaction struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	Type              TransactionType `json:"type"`
	Date              calendar.Date   `json:"date"`
	CategoryID        string          `json:"category_id,omitempty"`
	PaymentMethodID   string          `json:"payment_method_id,omitempty"`
	InstallmentPlanID string          `json:"installment_plan_id,omitempty"`
	RecurringPlanID   string          `json:"recurring_plan_id,omitempty"`
}

// Validate checks the transaction invariants.
func (t *Transaction) Validate() error {
	if t.Description == "" {
		return fmt.Errorf("description is required")
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	if !t.Type.Valid() {
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

// ApplyEdit copies the editable fields set in e into t; empty fields keep
// their value. Amount, type and plan links are immutable once recorded.
func (t *Transaction) ApplyEdit(e Transaction) {
	if e.Description != "" {
		t.Description = e.Description
	}
	if !e.Date.IsZero() {
		t.Date = e.Date
	}
	if e.CategoryID != "" {
		t.CategoryID = e.CategoryID
	}
}
