package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rocjay1/chanchito/internal/calendar"
	"github.com/rocjay1/chanchito/internal/finance"
)

// HandleDashboard returns the home summary of the caller.
func (d *Dependencies) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	userID := d.userID(w, r)
	if userID == "" {
		return
	}
	ctx := r.Context()

	in, err := LoadDashboardInput(ctx, d.Store, userID, d.today())
	if err != nil {
		writeStoreError(w, err, "Failed to load dashboard")
		return
	}
	in.FXRate = d.fxRate(ctx)

	WriteJSON(w, http.StatusOK, finance.BuildDashboard(in))
}

// LoadDashboardInput reads everything the dashboard of userID is built from.
// The FX rate is left unset.
func LoadDashboardInput(ctx context.Context, store Store, userID string, today calendar.Date) (finance.DashboardInput, error) {
	in := finance.DashboardInput{Today: today}
	var err error
	if in.Transactions, err = store.ListTransactions(ctx, userID); err != nil {
		return in, fmt.Errorf("failed to get transactions: %w", err)
	}
	if in.Installments, err = store.ListInstallmentPlans(ctx, userID); err != nil {
		return in, fmt.Errorf("failed to get installment plans: %w", err)
	}
	if in.Subscriptions, err = store.ListRecurringPlans(ctx, userID); err != nil {
		return in, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	if in.PaymentMethods, err = store.ListPaymentMethods(ctx, userID); err != nil {
		return in, fmt.Errorf("failed to get payment methods: %w", err)
	}
	if in.Investments, err = store.ListInvestments(ctx, userID); err != nil {
		return in, fmt.Errorf("failed to get investments: %w", err)
	}
	if in.Prices, err = store.ListMarketPrices(ctx); err != nil {
		return in, fmt.Errorf("failed to get market prices: %w", err)
	}
	if in.Savings, err = store.ListSavings(ctx, userID); err != nil {
		return in, fmt.Errorf("failed to get savings: %w", err)
	}
	return in, nil
}
