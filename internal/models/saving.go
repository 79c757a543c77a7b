package models

import (
	"fmt"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/shopspring/decimal"
)

// Saving is a cash savings entry. Balances are always derived sums; a
// withdrawal is a negative amount.
type Saving struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency"`
	Date        calendar.Date   `json:"date"`
}

// Validate checks the entry invariants.
func (s *Saving) Validate() error {
	if s.Amount.IsZero() {
		return fmt.Errorf("amount must not be zero")
	}
	if !s.Currency.Valid() {
		return fmt.Errorf("invalid currency %q", s.Currency)
	}
	if s.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}
