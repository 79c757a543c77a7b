// Package pricing resolves the latest market price of a holding. Each asset
// type is routed to one Source; every failure mode of a source degrades to
// "no price" at the Dispatcher so a batch refresh never fails as a whole.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultTimeout bounds a single price lookup.
const DefaultTimeout = 10 * time.Second

// ErrNoPrice is returned by sources that answered without a usable price.
var ErrNoPrice = errors.New("no price available")

// Quote identifies what to price. The price must be expressed in Currency;
// a source with no listing in that currency reports ErrNoPrice.
type Quote struct {
	Ticker    string
	Type      models.AssetType
	Currency  models.Currency
	SourceURL string
}

// QuoteFor returns the quote for an investment.
func QuoteFor(inv models.Investment) Quote {
	return Quote{Ticker: inv.Ticker, Type: inv.Type, Currency: inv.Currency, SourceURL: inv.SourceURL}
}

// currency returns the quote currency, ARS when unset.
func (q Quote) currency() models.Currency {
	if q.Currency == "" {
		return models.CurrencyARS
	}
	return q.Currency
}

// Source fetches the latest price of a quote.
type Source interface {
	Fetch(ctx context.Context, q Quote) (decimal.Decimal, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, q Quote) (decimal.Decimal, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, q Quote) (decimal.Decimal, error) {
	return f(ctx, q)
}

// Dispatcher routes quotes to the source for their asset type.
type Dispatcher struct {
	Equities Source // stock, cedear
	Crypto   Source // crypto
	Broker   Source // on, bond, fci
	Timeout  time.Duration
}

// NewDispatcher returns a dispatcher wired to the public quote sources,
// sharing client.
func NewDispatcher(client *http.Client, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		Equities: &YahooSource{Client: client},
		Crypto:   &BinanceSource{Client: client},
		Broker:   &BrokerSource{Client: client},
		Timeout:  timeout,
	}
}

func (d *Dispatcher) sourceFor(t models.AssetType) (Source, error) {
	var src Source
	switch t {
	case models.AssetStock, models.AssetCedear:
		src = d.Equities
	case models.AssetCrypto:
		src = d.Crypto
	case models.AssetON, models.AssetBond, models.AssetFCI:
		src = d.Broker
	default:
		return nil, fmt.Errorf("no price source for asset type %q", t)
	}
	if src == nil {
		return nil, fmt.Errorf("price source for asset type %q is not configured", t)
	}
	return src, nil
}

// Fetch implements Source. Unlike Resolve it reports why a price is missing.
func (d *Dispatcher) Fetch(ctx context.Context, q Quote) (price decimal.Decimal, err error) {
	defer func() {
		if r := recover(); r != nil {
			price, err = decimal.Zero, fmt.Errorf("price source panicked: %v", r)
		}
	}()

	src, err := d.sourceFor(q.Type)
	if err != nil {
		return decimal.Zero, err
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	price, err = src.Fetch(ctx, q)
	if err != nil {
		return decimal.Zero, err
	}
	if !price.IsPositive() {
		return decimal.Zero, ErrNoPrice
	}
	return price, nil
}

// Resolve returns the price of q. ok is false for any failure, which is
// logged and never returned.
func (d *Dispatcher) Resolve(ctx context.Context, q Quote) (decimal.Decimal, bool) {
	price, err := d.Fetch(ctx, q)
	if err != nil {
		slog.Warn("failed to resolve price", "ticker", q.Ticker, "type", q.Type, "error", err)
		return decimal.Zero, false
	}
	return price, true
}
