package finance

import (
	"time"

	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// HoldingValuation is the value of one investment at its last known price.
type HoldingValuation struct {
	Investment models.Investment `json:"investment"`
	// HasPrice is false when the ticker was never quoted; CurrentValue is
	// then zero.
	HasPrice     bool            `json:"has_price"`
	LastPrice    decimal.Decimal `json:"last_price"`
	LastUpdate   *time.Time      `json:"last_update,omitempty"`
	CurrentValue decimal.Decimal `json:"current_value"`
	// HasCost is false when the holding has no average buy price; Profit and
	// ProfitPercent are then zero.
	HasCost       bool            `json:"has_cost"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitPercent float64         `json:"profit_percent"`
}

// CurrencyTotals aggregates the holdings quoted in one currency.
type CurrencyTotals struct {
	Currency      models.Currency `json:"currency"`
	Value         decimal.Decimal `json:"value"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitPercent float64         `json:"profit_percent"`
	LastUpdate    *time.Time      `json:"last_update,omitempty"`
}

// Portfolio is the valuation of every holding, bucketed by currency. Buckets
// are never converted into each other.
type Portfolio struct {
	Holdings   []HoldingValuation                  `json:"holdings"`
	ByCurrency map[models.Currency]*CurrencyTotals `json:"by_currency"`
}

// Total returns the bucket for cur, or an empty bucket.
func (p Portfolio) Total(cur models.Currency) CurrencyTotals {
	if t, ok := p.ByCurrency[cur]; ok {
		return *t
	}
	return CurrencyTotals{Currency: cur, Value: decimal.Zero, CostBasis: decimal.Zero, Profit: decimal.Zero}
}

// PriceIndex maps models.PriceKey to the latest price.
func PriceIndex(prices []models.MarketPrice) map[string]models.MarketPrice {
	idx := make(map[string]models.MarketPrice, len(prices))
	for _, p := range prices {
		idx[p.Key()] = p
	}
	return idx
}

// ValueHolding values inv at price. ok reports whether a price is known.
func ValueHolding(inv models.Investment, price models.MarketPrice, ok bool) HoldingValuation {
	v := HoldingValuation{
		Investment:   inv,
		CurrentValue: decimal.Zero,
		CostBasis:    decimal.Zero,
		Profit:       decimal.Zero,
	}
	if ok {
		updated := price.LastUpdate
		v.HasPrice = true
		v.LastPrice = price.LastPrice
		v.LastUpdate = &updated
		v.CurrentValue = inv.Quantity.Mul(price.LastPrice)
	}
	if inv.AvgBuyPrice.Valid {
		v.HasCost = true
		v.CostBasis = inv.Quantity.Mul(inv.AvgBuyPrice.Decimal)
		v.Profit = v.CurrentValue.Sub(v.CostBasis)
		v.ProfitPercent = percentOf(v.Profit, v.CostBasis)
	}
	return v
}

// ValuePortfolio values every investment against the price of its ticker in
// its own currency. prices is keyed by models.PriceKey.
func ValuePortfolio(investments []models.Investment, prices map[string]models.MarketPrice) Portfolio {
	p := Portfolio{
		Holdings:   make([]HoldingValuation, 0, len(investments)),
		ByCurrency: map[models.Currency]*CurrencyTotals{},
	}
	for _, inv := range investments {
		price, ok := prices[models.PriceKey(inv.Ticker, inv.Currency)]
		v := ValueHolding(inv, price, ok)
		p.Holdings = append(p.Holdings, v)

		bucket, found := p.ByCurrency[inv.Currency]
		if !found {
			bucket = &CurrencyTotals{Currency: inv.Currency, Value: decimal.Zero, CostBasis: decimal.Zero, Profit: decimal.Zero}
			p.ByCurrency[inv.Currency] = bucket
		}
		bucket.Value = bucket.Value.Add(v.CurrentValue)
		bucket.CostBasis = bucket.CostBasis.Add(v.CostBasis)
		bucket.Profit = bucket.Profit.Add(v.Profit)
		if v.LastUpdate != nil && (bucket.LastUpdate == nil || v.LastUpdate.After(*bucket.LastUpdate)) {
			bucket.LastUpdate = v.LastUpdate
		}
	}
	for _, bucket := range p.ByCurrency {
		bucket.ProfitPercent = percentOf(bucket.Profit, bucket.CostBasis)
	}
	return p
}

// SavingsBalance sums the savings entries per currency.
func SavingsBalance(savings []models.Saving) map[models.Currency]decimal.Decimal {
	balance := map[models.Currency]decimal.Decimal{
		models.CurrencyARS: decimal.Zero,
		models.CurrencyUSD: decimal.Zero,
	}
	for _, s := range savings {
		balance[s.Currency] = balance[s.Currency].Add(s.Amount)
	}
	return balance
}

// Patrimony is the total worth of investments plus savings, in ARS and USD.
type Patrimony struct {
	ARS decimal.Decimal `json:"ars"`
	USD decimal.Decimal `json:"usd"`
	// Rate is the dólar blue sell rate used for the conversion. When it is
	// missing ARS and USD are the raw per-currency sums.
	Rate      decimal.NullDecimal `json:"rate"`
	Converted bool                `json:"converted"`
}

// ComputePatrimony adds investments and savings in both currencies. With a
// positive rate, USD amounts are converted to ARS and the USD figure is the
// ARS total divided by the same rate, so both totals describe one amount.
func ComputePatrimony(portfolio Portfolio, savings map[models.Currency]decimal.Decimal, rate decimal.NullDecimal) Patrimony {
	ars := portfolio.Total(models.CurrencyARS).Value.Add(savings[models.CurrencyARS])
	usd := portfolio.Total(models.CurrencyUSD).Value.Add(savings[models.CurrencyUSD])

	if !rate.Valid || !rate.Decimal.IsPositive() {
		return Patrimony{ARS: ars, USD: usd}
	}
	total := ars.Add(usd.Mul(rate.Decimal))
	return Patrimony{
		ARS:       total,
		USD:       total.Div(rate.Decimal),
		Rate:      rate,
		Converted: true,
	}
}
