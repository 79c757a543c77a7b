package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Investment is one holding. Quantity is set at creation, there are no
// separate buy/sell movements.
type Investment struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	Ticker      string              `json:"ticker"`
	Name        string              `json:"name"`
	Type        AssetType           `json:"type"`
	Quantity    decimal.Decimal     `json:"quantity"`
	AvgBuyPrice decimal.NullDecimal `json:"avg_buy_price"`
	Currency    Currency            `json:"currency"`
	SourceURL   string              `json:"source_url,omitempty"`
}

// Normalize upper-cases the ticker and defaults the display name.
func (i *Investment) Normalize() {
	i.Ticker = strings.ToUpper(strings.TrimSpace(i.Ticker))
	if i.Name == "" {
		i.Name = i.Ticker
	}
}

// Validate checks the holding invariants.
func (i *Investment) Validate() error {
	if i.Ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	if !i.Type.Valid() {
		return fmt.Errorf("invalid asset type %q", i.Type)
	}
	if !i.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be greater than zero")
	}
	if i.AvgBuyPrice.Valid && i.AvgBuyPrice.Decimal.IsNegative() {
		return fmt.Errorf("average buy price must not be negative")
	}
	if !i.Currency.Valid() {
		return fmt.Errorf("invalid currency %q", i.Currency)
	}
	return nil
}

// MarketPrice is the latest known price of a ticker in one currency. Only
// the last value is kept; it is shared by every user holding the ticker in
// that currency.
type MarketPrice struct {
	Ticker     string          `json:"ticker"`
	Currency   Currency        `json:"currency"`
	LastPrice  decimal.Decimal `json:"last_price"`
	LastUpdate time.Time       `json:"last_update"`
}

// PriceKey identifies the price of ticker in c. An empty currency is ARS.
func PriceKey(ticker string, c Currency) string {
	if c == "" {
		c = CurrencyARS
	}
	return ticker + ":" + string(c)
}

// Key returns the PriceKey of p.
func (p MarketPrice) Key() string { return PriceKey(p.Ticker, p.Currency) }
