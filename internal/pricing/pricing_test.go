package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func fixed(v string) Source {
	return SourceFunc(func(ctx context.Context, q Quote) (decimal.Decimal, error) {
		return decimal.RequireFromString(v), nil
	})
}

func TestDispatcher_Routes(t *testing.T) {
	d := &Dispatcher{Equities: fixed("1"), Crypto: fixed("2"), Broker: fixed("3")}

	routes := map[models.AssetType]string{
		models.AssetStock:  "1",
		models.AssetCedear: "1",
		models.AssetCrypto: "2",
		models.AssetON:     "3",
		models.AssetBond:   "3",
		models.AssetFCI:    "3",
	}
	for typ, want := range routes {
		price, ok := d.Resolve(context.Background(), Quote{Ticker: "X", Type: typ})
		assert.True(t, ok, typ)
		assert.Equal(t, want, price.String(), typ)
	}

	_, ok := d.Resolve(context.Background(), Quote{Ticker: "X", Type: "commodity"})
	assert.False(t, ok)
}

func TestDispatcher_AbsorbsFailures(t *testing.T) {
	failing := SourceFunc(func(ctx context.Context, q Quote) (decimal.Decimal, error) {
		return decimal.Zero, errors.New("connection refused")
	})
	panicking := SourceFunc(func(ctx context.Context, q Quote) (decimal.Decimal, error) {
		panic("unexpected page layout")
	})
	zero := fixed("0")

	for name, src := range map[string]Source{"error": failing, "panic": panicking, "zero": zero} {
		d := &Dispatcher{Equities: src}
		assert.NotPanics(t, func() {
			_, ok := d.Resolve(context.Background(), Quote{Ticker: "GGAL", Type: models.AssetStock})
			assert.False(t, ok, name)
		})
	}

	// unconfigured source
	_, ok := (&Dispatcher{}).Resolve(context.Background(), Quote{Ticker: "BTC", Type: models.AssetCrypto})
	assert.False(t, ok)
}

func TestDispatcher_Timeout(t *testing.T) {
	slow := SourceFunc(func(ctx context.Context, q Quote) (decimal.Decimal, error) {
		select {
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		case <-time.After(5 * time.Second):
			return decimal.NewFromInt(1), nil
		}
	})
	d := &Dispatcher{Equities: slow, Timeout: 20 * time.Millisecond}

	start := time.Now()
	_, err := d.Fetch(context.Background(), Quote{Ticker: "GGAL", Type: models.AssetStock})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
