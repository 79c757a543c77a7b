package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip encodes e the way the table client sends it and decodes it the
// way rows come back from a query.
func roundTrip(t *testing.T, e entity) entity {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	var out entity
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestPaymentMethodEntity_OptionalDays(t *testing.T) {
	closing := 25
	m := models.PaymentMethod{ID: "m1", UserID: "u1", Name: "Visa", Type: models.PaymentCredit, DefaultClosingDay: &closing, IsPersonal: true}

	e := paymentMethodEntity(m)
	assert.Equal(t, "u1", e["PartitionKey"])
	assert.Equal(t, "m1", e["RowKey"])
	assert.NotContains(t, e, "DefaultPaymentDay")

	got := paymentMethodFrom(roundTrip(t, e))
	require.NotNil(t, got.DefaultClosingDay)
	assert.Equal(t, 25, *got.DefaultClosingDay)
	assert.Nil(t, got.DefaultPaymentDay)
	assert.True(t, got.IsPersonal)
}

func TestInvestmentEntity_NullAvgBuyPrice(t *testing.T) {
	inv := models.Investment{ID: "i1", UserID: "u1", Ticker: "AL30", Type: models.AssetBond, Quantity: decimal.NewFromInt(100), Currency: models.CurrencyARS}
	got := investmentFrom(roundTrip(t, investmentEntity(inv)))
	assert.False(t, got.AvgBuyPrice.Valid)

	inv.AvgBuyPrice = decimal.NewNullDecimal(decimal.RequireFromString("71250.5"))
	got = investmentFrom(roundTrip(t, investmentEntity(inv)))
	require.True(t, got.AvgBuyPrice.Valid)
	assert.Equal(t, "71250.5", got.AvgBuyPrice.Decimal.String())
}

func TestTransactionEntity_KeepsDecimalPrecision(t *testing.T) {
	tx := models.Transaction{
		ID: "t1", UserID: "u1", Description: "Cuota", Amount: decimal.RequireFromString("333.33"),
		Type: models.TransactionExpense, Date: calendar.MustParse("2024-02-29"), InstallmentPlanID: "p1",
	}
	e := transactionEntity(tx)
	assert.Equal(t, "333.33", e["Amount"])

	got := transactionFrom(roundTrip(t, e))
	assert.True(t, got.Amount.Equal(tx.Amount))
	got.Amount = tx.Amount
	assert.Equal(t, tx, got)
}

func TestMarketPriceEntity(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.FixedZone("ART", -3*3600))
	e := marketPriceEntity(models.MarketPrice{Ticker: "GGAL", LastPrice: decimal.NewFromInt(150), LastUpdate: at})
	assert.Equal(t, marketPricePartition, e["PartitionKey"])
	assert.Equal(t, "GGAL:ARS", e["RowKey"])

	got := marketPriceFrom(roundTrip(t, e))
	assert.Equal(t, "GGAL", got.Ticker)
	assert.Equal(t, models.CurrencyARS, got.Currency)
	assert.True(t, got.LastUpdate.Equal(at))
	assert.Equal(t, "150", got.LastPrice.String())
}

func TestEntityGetters_TolerateTypes(t *testing.T) {
	e := entity{"Count": float64(6), "Text": "7", "Amount": float64(12.5), "Missing": nil}
	assert.Equal(t, 6, e.integer("Count"))
	assert.Equal(t, 7, e.integer("Text"))
	assert.Equal(t, "12.5", e.dec("Amount").String())
	assert.Nil(t, e.intPtr("Missing"))
	assert.True(t, e.dec("Missing").IsZero())
	assert.False(t, e.nullDec("Missing").Valid)
}

func TestODataQuote(t *testing.T) {
	assert.Equal(t, "'o''brien'", odataQuote("o'brien"))
}
