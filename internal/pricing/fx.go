package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	dolarAPIBlueURL = "https://dolarapi.com/v1/dolares/blue"
	blueCacheKey    = "blue"
	blueLastKey     = "blue:last"
	blueFailureKey  = "blue:failure"
)

const (
	// DefaultFXTTL is how long a dólar blue quote is reused.
	DefaultFXTTL = 15 * time.Minute
	// DefaultFXFailureTTL is how long a failed fetch is remembered before
	// dolarapi is tried again.
	DefaultFXFailureTTL = time.Minute
)

// FXQuote is an informal USD/ARS quote.
type FXQuote struct {
	Buy       decimal.Decimal `json:"compra"`
	Sell      decimal.Decimal `json:"venta"`
	UpdatedAt time.Time       `json:"fechaActualizacion"`
}

// FXProvider returns the latest dólar blue quote, cached for TTL. While the
// upstream fails it serves the last good quote, and retries at most once per
// FailureTTL.
type FXProvider struct {
	Client     *http.Client
	URL        string
	FailureTTL time.Duration
	cache      *cache.Cache
}

// NewFXProvider returns a provider backed by dolarapi.com.
func NewFXProvider(client *http.Client, ttl time.Duration) *FXProvider {
	if ttl <= 0 {
		ttl = DefaultFXTTL
	}
	return &FXProvider{
		Client:     client,
		URL:        dolarAPIBlueURL,
		FailureTTL: DefaultFXFailureTTL,
		cache:      cache.New(ttl, 2*ttl),
	}
}

// Blue returns the current dólar blue quote.
func (p *FXProvider) Blue(ctx context.Context) (FXQuote, error) {
	if cached, found := p.cache.Get(blueCacheKey); found {
		return cached.(FXQuote), nil
	}
	if failed, found := p.cache.Get(blueFailureKey); found {
		return p.lastGood(failed.(error))
	}

	q, err := p.fetch(ctx)
	if err != nil {
		ttl := p.FailureTTL
		if ttl <= 0 {
			ttl = DefaultFXFailureTTL
		}
		p.cache.Set(blueFailureKey, err, ttl)
		return p.lastGood(err)
	}

	p.cache.SetDefault(blueCacheKey, q)
	p.cache.Set(blueLastKey, q, cache.NoExpiration)
	p.cache.Delete(blueFailureKey)
	return q, nil
}

func (p *FXProvider) fetch(ctx context.Context) (FXQuote, error) {
	var q FXQuote
	if err := getJSON(ctx, p.Client, p.URL, &q); err != nil {
		return FXQuote{}, fmt.Errorf("failed to fetch dolar blue: %w", err)
	}
	if !q.Sell.IsPositive() {
		return FXQuote{}, fmt.Errorf("%w: dolar blue sell rate is %s", ErrNoPrice, q.Sell)
	}
	return q, nil
}

// lastGood returns the last quote fetched successfully, or err when there is
// none.
func (p *FXProvider) lastGood(err error) (FXQuote, error) {
	last, found := p.cache.Get(blueLastKey)
	if !found {
		return FXQuote{}, err
	}
	q := last.(FXQuote)
	slog.Warn("serving last known dolar blue quote", "updated_at", q.UpdatedAt, "error", err)
	return q, nil
}

// SellRate returns the dólar blue sell rate, or an invalid NullDecimal when
// it cannot be fetched. Totals then fall back to per-currency sums.
func (p *FXProvider) SellRate(ctx context.Context) decimal.NullDecimal {
	q, err := p.Blue(ctx)
	if err != nil {
		slog.Warn("dolar blue unavailable", "error", err)
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(q.Sell)
}
