package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFXProvider_BlueIsCached(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"moneda":"USD","casa":"blue","nombre":"Blue","compra":1180,"venta":1200.5,"fechaActualizacion":"2024-03-10T14:57:00.000Z"}`))
	}))
	defer ts.Close()

	p := NewFXProvider(ts.Client(), time.Minute)
	p.URL = ts.URL

	q, err := p.Blue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1180", q.Buy.String())
	assert.Equal(t, "1200.5", q.Sell.String())
	assert.Equal(t, 2024, q.UpdatedAt.Year())

	_, err = p.Blue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	rate := p.SellRate(context.Background())
	assert.True(t, rate.Valid)
	assert.Equal(t, "1200.5", rate.Decimal.String())
}

func TestFXProvider_Unavailable(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	p := NewFXProvider(ts.Client(), time.Minute)
	p.URL = ts.URL

	_, err := p.Blue(context.Background())
	assert.Error(t, err)
	assert.False(t, p.SellRate(context.Background()).Valid)
	// the failure is remembered instead of blocking every caller on a retry
	assert.Equal(t, int32(1), hits.Load())
}

func TestFXProvider_ServesLastGoodQuote(t *testing.T) {
	var hits atomic.Int32
	var down atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if down.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"compra":1180,"venta":1200.5,"fechaActualizacion":"2024-03-10T14:57:00.000Z"}`))
	}))
	defer ts.Close()

	p := NewFXProvider(ts.Client(), time.Millisecond)
	p.URL = ts.URL

	_, err := p.Blue(context.Background())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	down.Store(true)

	q, err := p.Blue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1200.5", q.Sell.String())
	assert.Equal(t, int32(2), hits.Load())

	rate := p.SellRate(context.Background())
	assert.True(t, rate.Valid)
	assert.Equal(t, int32(2), hits.Load())

	// retried once the failure is forgotten
	p.cache.Delete(blueFailureKey)
	down.Store(false)
	_, err = p.Blue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}
