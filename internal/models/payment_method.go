package models

import "fmt"

// PaymentMethod is a card, account or cash wallet. Credit methods may carry
// the default statement closing and payment days.
type PaymentMethod struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	Name              string            `json:"name"`
	Type              PaymentMethodType `json:"type"`
	DefaultClosingDay *int              `json:"default_closing_day,omitempty"`
	DefaultPaymentDay *int              `json:"default_payment_day,omitempty"`
	IsPersonal        bool              `json:"is_personal"`
}

// HasCycle reports whether billing cycles can be projected for the method.
func (m *PaymentMethod) HasCycle() bool {
	return m != nil && m.Type == PaymentCredit && m.DefaultClosingDay != nil && m.DefaultPaymentDay != nil
}

// Validate checks the method invariants.
func (m *PaymentMethod) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !m.Type.Valid() {
		return fmt.Errorf("invalid payment method type %q", m.Type)
	}
	days := []struct {
		name string
		day  *int
	}{{"closing day", m.DefaultClosingDay}, {"payment day", m.DefaultPaymentDay}}
	for _, d := range days {
		name, day := d.name, d.day
		if day == nil {
			continue
		}
		if m.Type != PaymentCredit {
			return fmt.Errorf("%s is only allowed on credit methods", name)
		}
		if *day < 1 || *day > 31 {
			return fmt.Errorf("%s must be between 1 and 31", name)
		}
	}
	return nil
}
