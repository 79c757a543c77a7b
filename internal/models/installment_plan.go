package models

import (
	"fmt"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/shopspring/decimal"
)

// InstallmentPlan is a purchase paid in InstallmentsCount equal monthly
// installments. Its child transactions carry InstallmentPlanID.
type InstallmentPlan struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Description       string          `json:"description"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	InstallmentsCount int             `json:"installments_count"`
	PurchaseDate      calendar.Date   `json:"purchase_date"`
	CategoryID        string          `json:"category_id,omitempty"`
	PaymentMethodID   string          `json:"payment_method_id,omitempty"`
}

// Validate checks the plan invariants.
func (p *InstallmentPlan) Validate() error {
	if p.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !p.TotalAmount.IsPositive() {
		return fmt.Errorf("total amount must be greater than zero")
	}
	if p.InstallmentsCount < 1 {
		return fmt.Errorf("installments count must be at least 1")
	}
	if p.PurchaseDate.IsZero() {
		return fmt.Errorf("purchase date is required")
	}
	return nil
}

// ApplyEdit copies the editable fields set in e into p; empty fields keep
// their value. Amount, count and date never change after creation.
func (p *InstallmentPlan) ApplyEdit(e InstallmentPlan) {
	if e.Description != "" {
		p.Description = e.Description
	}
	if e.CategoryID != "" {
		p.CategoryID = e.CategoryID
	}
}
