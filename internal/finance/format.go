package finance

import (
	"github.com/Rhymond/go-money"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount with the symbol and separators of cur, rounded
// to the currency fraction. Unknown currencies fall back to a plain decimal.
func FormatMoney(amount decimal.Decimal, cur models.Currency) string {
	c := money.GetCurrency(string(cur))
	if c == nil {
		return amount.StringFixed(2) + " " + string(cur)
	}
	minor := amount.Shift(int32(c.Fraction)).Round(0)
	return c.Formatter().Format(minor.IntPart())
}
