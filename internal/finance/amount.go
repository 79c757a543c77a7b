package finance

import (
	"github.com/rocjay1/chanchito/internal/models"
	"github.com/shopspring/decimal"
)

// Signed returns the amount of tx with its sign applied: income is positive,
// expense is negative. It is the only place a transaction type becomes a sign.
func Signed(tx models.Transaction) decimal.Decimal {
	if tx.Type == models.TransactionIncome {
		return tx.Amount.Abs()
	}
	return tx.Amount.Abs().Neg()
}

// SignedSum sums the signed amounts of txs.
func SignedSum(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(Signed(tx))
	}
	return total
}
