package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RecurringPlan is a fixed monthly obligation such as a subscription.
type RecurringPlan struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	IsActive        bool            `json:"is_active"`
	CategoryID      string          `json:"category_id,omitempty"`
	PaymentMethodID string          `json:"payment_method_id,omitempty"`
}

// Validate checks the plan invariants.
func (p *RecurringPlan) Validate() error {
	if p.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("amount must be greater than zero")
	}
	return nil
}
