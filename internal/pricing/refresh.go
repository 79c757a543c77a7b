package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultBatchSize is how many quotes are fetched at once during a refresh.
const DefaultBatchSize = 5

// Resolver returns the price of a quote, or ok=false.
type Resolver interface {
	Resolve(ctx context.Context, q Quote) (decimal.Decimal, bool)
}

// PriceStore persists the latest price of a ticker.
type PriceStore interface {
	UpsertMarketPrice(ctx context.Context, price models.MarketPrice) error
}

// Refresher fetches fresh prices for a set of holdings and stores them.
type Refresher struct {
	Resolver  Resolver
	Store     PriceStore
	BatchSize int
	Now       func() time.Time
}

// RefreshReport summarizes a refresh. Attempted counts unique ticker and
// currency pairs.
type RefreshReport struct {
	Attempted int      `json:"attempted"`
	Updated   int      `json:"updated"`
	Failed    int      `json:"failed"`
	Missing   []string `json:"missing,omitempty"`
}

// Refresh prices every distinct ticker and currency of investments. Tickers are processed
// in groups of BatchSize; a group runs concurrently and is fully settled
// before the next one starts. A failing or panicking ticker only affects
// itself.
func (r *Refresher) Refresh(ctx context.Context, investments []models.Investment) RefreshReport {
	quotes := uniqueQuotes(investments)
	report := RefreshReport{Attempted: len(quotes)}

	size := r.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	for start := 0; start < len(quotes); start += size {
		batch := quotes[start:min(start+size, len(quotes))]
		results := make([]bool, len(batch))

		var wg sync.WaitGroup
		for i, q := range batch {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = r.refreshOne(ctx, q)
			}()
		}
		wg.Wait()

		for i, ok := range results {
			if ok {
				report.Updated++
			} else {
				report.Failed++
				report.Missing = append(report.Missing, batch[i].Ticker)
			}
		}
	}

	slog.Info("price refresh finished", "attempted", report.Attempted, "updated", report.Updated, "failed", report.Failed)
	return report
}

func (r *Refresher) refreshOne(ctx context.Context, q Quote) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("price refresh panicked", "ticker", q.Ticker, "error", fmt.Sprint(rec))
			ok = false
		}
	}()

	price, found := r.Resolver.Resolve(ctx, q)
	if !found {
		return false
	}

	mp := models.MarketPrice{Ticker: q.Ticker, Currency: q.currency(), LastPrice: price, LastUpdate: r.now()}
	if err := r.Store.UpsertMarketPrice(ctx, mp); err != nil {
		slog.Error("failed to store market price", "ticker", q.Ticker, "error", err)
		return false
	}
	return true
}

func (r *Refresher) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// uniqueQuotes returns one quote per ticker and currency, in first-seen
// order.
func uniqueQuotes(investments []models.Investment) []Quote {
	seen := make(map[string]bool, len(investments))
	quotes := make([]Quote, 0, len(investments))
	for _, inv := range investments {
		key := models.PriceKey(inv.Ticker, inv.Currency)
		if inv.Ticker == "" || seen[key] {
			continue
		}
		seen[key] = true
		quotes = append(quotes, QuoteFor(inv))
	}
	return quotes
}
